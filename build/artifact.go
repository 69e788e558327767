package build

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// MessageFormat is passed to `cargo build` so that the artifacts it
// produced are reported on stdout while diagnostics stay rendered on stderr.
const MessageFormat = "json-render-diagnostics"

// maxMessageLine bounds one JSON message line from cargo.
const maxMessageLine = 4 << 20

// CompilerArtifact is one `compiler-artifact` message from cargo.
type CompilerArtifact struct {
	Target struct {
		Name string   `json:"name"`
		Kind []string `json:"kind"`
	} `json:"target"`

	// Executable is empty for libraries and build scripts
	Executable string `json:"executable"`
}

type message struct {
	Reason string `json:"reason"`
	CompilerArtifact
}

// ReadArtifacts scans cargo's JSON message stream and returns the artifacts
// that have an executable. Lines that are not cargo messages are copied to
// other, so build script and cargo output keeps reaching the user.
func ReadArtifacts(r io.Reader, other io.Writer) ([]CompilerArtifact, error) {
	var artifacts []CompilerArtifact

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageLine)
	for scanner.Scan() {
		line := scanner.Bytes()

		var msg message
		if !bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) || json.Unmarshal(line, &msg) != nil || msg.Reason == "" {
			if other != nil {
				if _, err := fmt.Fprintf(other, "%s\n", line); err != nil {
					return artifacts, err
				}
			}
			continue
		}

		if msg.Reason == "compiler-artifact" && msg.Executable != "" {
			artifacts = append(artifacts, msg.CompilerArtifact)
		}
	}
	if err := scanner.Err(); err != nil {
		return artifacts, fmt.Errorf("read cargo messages: %w", err)
	}
	return artifacts, nil
}

// SelectExecutable returns the executable of the artifact named name with
// the kind req asks for (example for --example, bin otherwise). The last
// matching message wins.
func SelectExecutable(req Request, name string, artifacts []CompilerArtifact) (string, bool) {
	kind := "bin"
	if req.Artifact.Kind == ArtifactExample {
		kind = "example"
	}

	for i := len(artifacts) - 1; i >= 0; i-- {
		a := artifacts[i]
		if a.Target.Name == name && slices.Contains(a.Target.Kind, kind) {
			return a.Executable, true
		}
	}
	return "", false
}
