// Package device defines the device catalog model and its persistence layer.
//
// A device is a catalog entry for a physical appliance in the household:
// name, type, location, manufacturer, model, and an optional reference to an
// uploaded manual file. Devices imported from the hub are flagged so repeat
// imports can skip them.
package device
