// Package catalog stores the IR command library: the named, per-brand
// infrared codes the resolver draws on when turning a room intent into
// a transmittable command.
//
// Entries are grouped by device type (TV, AC) and category (Power,
// Volume, Channel, Input, Navigation). TV-style entries carry a single
// code; AC entries additionally carry the mode, temperature and fan
// speed the code encodes, since AC remotes transmit full state rather
// than deltas.
//
// Device type strings arriving from clients are normalised once at this
// package's boundary via NormalizeDeviceType; everything downstream
// works with the canonical "TV" and "AC" values.
package catalog
