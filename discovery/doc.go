// Package discovery finds the HF2 device to flash.
//
// Devices are either opened by explicit vendor/product identifiers or picked
// from the enumerated USB HID devices by a Strategy:
//
//   - IdentifierTableStrategy selects the first device whose identifiers
//     appear in a table (a zero product ID matches any product)
//   - ProbeStrategy opens devices one by one and selects the first that
//     answers an HF2 INFO request
//   - ChainStrategy combines strategies, first selection wins
//
// StrategyFromName maps the configuration values "table", "probe" and
// "table+probe" to these strategies.
package discovery
