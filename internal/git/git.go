// Package git reads change information out of a local checkout for
// incremental re-analysis.
package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Status classifies one changed path.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
)

// Change is one path reported by git diff.
type Change struct {
	Path   string
	Status Status
}

// ChangedFiles runs git diff --name-status against baseRef in the
// repository at root and returns the changed paths. Renames are reported
// as a delete of the old path and an add of the new one.
func ChangedFiles(ctx context.Context, root, baseRef string) ([]Change, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-status", baseRef)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameStatus(output), nil
}

func parseNameStatus(output []byte) []Change {
	var changes []Change
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		switch {
		case strings.HasPrefix(status, "A"):
			changes = append(changes, Change{Path: fields[1], Status: StatusAdded})
		case strings.HasPrefix(status, "D"):
			changes = append(changes, Change{Path: fields[1], Status: StatusDeleted})
		case strings.HasPrefix(status, "R") && len(fields) >= 3:
			changes = append(changes,
				Change{Path: fields[1], Status: StatusDeleted},
				Change{Path: fields[2], Status: StatusAdded})
		default:
			changes = append(changes, Change{Path: fields[1], Status: StatusModified})
		}
	}
	return changes
}
