package loop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/artifact"
)

// CommandReviser shells out to an external revision tool. The tool receives
// a JSON request on stdin and prints the replacement section body on
// stdout. This is the production integration point for the LLM-backed
// design agent.
type CommandReviser struct {
	Command string
	Args    []string
}

type reviseRequest struct {
	Document     string `json:"document"`
	Section      string `json:"section"`
	Instructions string `json:"instructions"`
}

// ReviseSection invokes the external command and returns its output as the
// new section body.
func (r CommandReviser) ReviseSection(ctx context.Context, document, header, instructions string) (string, error) {
	request, err := json.Marshal(reviseRequest{Document: document, Section: header, Instructions: instructions})
	if err != nil {
		return "", fmt.Errorf("loop: encode revise request: %w", err)
	}
	output, err := runCommand(ctx, r.Command, r.Args, request)
	if err != nil {
		return "", fmt.Errorf("loop: reviser %s: %w", r.Command, err)
	}
	body := strings.TrimSpace(string(output))
	if body == "" {
		return "", fmt.Errorf("loop: reviser %s returned empty body for %s", r.Command, header)
	}
	return body, nil
}

// CommandSimulator shells out to an external simulation tool. The tool
// receives a JSON request on stdin and prints a simulation record JSON on
// stdout.
type CommandSimulator struct {
	Command string
	Args    []string
}

type simulateRequest struct {
	Design       string   `json:"design"`
	Instructions []string `json:"instructions"`
}

// Rerun invokes the external command and decodes the replacement record.
func (s CommandSimulator) Rerun(ctx context.Context, design string, instructions []string) (artifact.SimulationRecord, error) {
	request, err := json.Marshal(simulateRequest{Design: design, Instructions: instructions})
	if err != nil {
		return artifact.SimulationRecord{}, fmt.Errorf("loop: encode simulate request: %w", err)
	}
	output, err := runCommand(ctx, s.Command, s.Args, request)
	if err != nil {
		return artifact.SimulationRecord{}, fmt.Errorf("loop: simulator %s: %w", s.Command, err)
	}
	var record artifact.SimulationRecord
	if err := json.Unmarshal(output, &record); err != nil {
		return artifact.SimulationRecord{}, fmt.Errorf("loop: decode simulator output: %w", err)
	}
	return record, nil
}

func runCommand(ctx context.Context, command string, args []string, stdin []byte) ([]byte, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command is required")
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
