// Package hub implements the discovery client for the upstream
// home-automation hub's REST API.
//
// The hub API is treated as unreliable: its base URL differs between
// deployments, registry endpoints vary by version, and any call may fail.
// The client probes candidate base URLs once at construction, tries ranked
// endpoint variants for each registry, and degrades every failure to an
// empty result. No error from the upstream ever escapes ListDevices or
// ListAreas; callers merge whatever comes back.
package hub
