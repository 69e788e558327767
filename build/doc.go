// Package build drives cargo to produce the firmware to flash.
//
// A Request carries every build option explicitly. Args turns it into
// cargo arguments and ResolveArtifactPath computes the output location
// from `cargo metadata` without touching the filesystem. Runner executes
// both and reports failing builds as *BuildFailedError carrying cargo's
// exit code.
package build
