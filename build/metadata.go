package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// Package is one workspace member reported by cargo metadata.
type Package struct {
	Name         string `json:"name"`
	ManifestPath string `json:"manifest_path"`
}

// Metadata is the subset of `cargo metadata` output needed to locate
// build artifacts.
type Metadata struct {
	TargetDirectory string    `json:"target_directory"`
	WorkspaceRoot   string    `json:"workspace_root"`
	Packages        []Package `json:"packages"`
}

// ParseMetadata decodes `cargo metadata --format-version 1` output.
func ParseMetadata(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse cargo metadata: %w", err)
	}
	if meta.TargetDirectory == "" {
		return nil, errors.New("parse cargo metadata: missing target_directory")
	}
	return &meta, nil
}

// ResolveArtifactPath computes where cargo places the artifact of req:
//
//	<target_dir>[/<triple>]/<debug|release>[/examples]/<name>
//
// The default artifact is the binary named after the selected package
// (--package, the package owning --manifest-path, or the only package).
func ResolveArtifactPath(req Request, meta *Metadata) (string, error) {
	if meta == nil || meta.TargetDirectory == "" {
		return "", errors.New("resolve artifact: no target directory")
	}

	name, err := ArtifactName(req, meta)
	if err != nil {
		return "", err
	}

	dir := meta.TargetDirectory
	if req.TargetTriple != "" {
		dir = filepath.Join(dir, req.TargetTriple)
	}
	dir = filepath.Join(dir, req.Profile.Dir())
	if req.Artifact.Kind == ArtifactExample {
		dir = filepath.Join(dir, "examples")
	}

	return filepath.Join(dir, name), nil
}

// ArtifactName returns the cargo target name of the artifact req builds.
func ArtifactName(req Request, meta *Metadata) (string, error) {
	if req.Artifact.Kind != ArtifactDefault && req.Artifact.Name != "" {
		return req.Artifact.Name, nil
	}
	if meta == nil {
		return "", errors.New("resolve artifact: no cargo metadata")
	}

	pkg, err := selectPackage(req, meta)
	if err != nil {
		return "", err
	}
	return pkg.Name, nil
}

func selectPackage(req Request, meta *Metadata) (Package, error) {
	if req.Package != "" {
		for _, p := range meta.Packages {
			if p.Name == req.Package {
				return p, nil
			}
		}
		return Package{}, fmt.Errorf("resolve artifact: package %q not found", req.Package)
	}

	if req.ManifestPath != "" {
		want, err := filepath.Abs(req.ManifestPath)
		if err != nil {
			return Package{}, fmt.Errorf("resolve artifact: %w", err)
		}
		for _, p := range meta.Packages {
			if filepath.Clean(p.ManifestPath) == want {
				return p, nil
			}
		}
	}

	switch len(meta.Packages) {
	case 0:
		return Package{}, errors.New("resolve artifact: no packages in workspace")
	case 1:
		return meta.Packages[0], nil
	default:
		return Package{}, fmt.Errorf("resolve artifact: workspace has %d packages, use --package, --bin or --example", len(meta.Packages))
	}
}
