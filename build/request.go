package build

import "strings"

// ArtifactKind selects which cargo target is flashed.
type ArtifactKind int

const (
	// ArtifactDefault flashes the binary named after the package
	ArtifactDefault ArtifactKind = iota
	// ArtifactBin flashes a named binary (--bin)
	ArtifactBin
	// ArtifactExample flashes a named example (--example)
	ArtifactExample
)

// String returns the cargo flag spelling of the kind.
func (k ArtifactKind) String() string {
	switch k {
	case ArtifactBin:
		return "bin"
	case ArtifactExample:
		return "example"
	default:
		return "default"
	}
}

// Artifact names the target to build.
type Artifact struct {
	Kind ArtifactKind
	Name string
}

// Profile is the cargo build profile.
type Profile int

const (
	ProfileDev Profile = iota
	ProfileRelease
)

// Dir returns the profile's output directory name.
func (p Profile) Dir() string {
	if p == ProfileRelease {
		return "release"
	}
	return "debug"
}

// Request describes one cargo build. It carries every option the build
// understands; nothing is passed through from the raw command line.
type Request struct {
	Artifact Artifact
	Profile  Profile

	// TargetTriple is the --target value (empty for the host)
	TargetTriple string

	ManifestPath string
	Package      string

	Features          []string
	AllFeatures       bool
	NoDefaultFeatures bool
}

// Args returns the cargo arguments that build the request.
//
// Example:
//
//	build.Args(build.Request{
//	    Artifact: build.Artifact{Kind: build.ArtifactBin, Name: "blinky"},
//	    Profile:  build.ProfileRelease,
//	})
//	// []string{"build", "--bin", "blinky", "--release"}
func Args(req Request) []string {
	args := []string{"build"}

	switch req.Artifact.Kind {
	case ArtifactBin:
		args = append(args, "--bin", req.Artifact.Name)
	case ArtifactExample:
		args = append(args, "--example", req.Artifact.Name)
	}

	if req.Profile == ProfileRelease {
		args = append(args, "--release")
	}
	if req.TargetTriple != "" {
		args = append(args, "--target", req.TargetTriple)
	}
	if req.ManifestPath != "" {
		args = append(args, "--manifest-path", req.ManifestPath)
	}
	if req.Package != "" {
		args = append(args, "--package", req.Package)
	}
	if len(req.Features) > 0 {
		args = append(args, "--features", strings.Join(req.Features, ","))
	}
	if req.AllFeatures {
		args = append(args, "--all-features")
	}
	if req.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}

	return args
}
