// Package prompt builds the instructional text sent to the model.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInstruction is returned when there is nothing to build a prompt from.
var ErrEmptyInstruction = errors.New("instruction is required")

// Mode selects the shape of reply the prompt asks for.
type Mode int

const (
	// ModeCreate asks for a complete new task.
	ModeCreate Mode = iota
	// ModeUpdate asks for a partial task where every field is optional.
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// CannotGenerateReply is the reply the create prompt asks for when no task fits.
const CannotGenerateReply = `{"error": "Cannot generate task."}`

const createTemplate = `Create a task in strict JSON format with the following fields:
{
  "title": "string",
  "description": "string",
  "priority": "low | medium | high",
  "dueDate": "YYYY-MM-DD or null"
}
Input: "%s"
Respond with JSON only. If you cannot generate a task, respond with ` + CannotGenerateReply + `.`

const updateTemplate = `Based on the following instruction, update the task data in strict JSON format:
Instruction: "%s"
Fields to update: { "title", "description", "priority", "status", "dueDate" }
Respond in the following format:
{
  "title": "string (optional)",
  "description": "string (optional)",
  "priority": "low | medium | high (optional)",
  "status": "pending | completed (optional)",
  "dueDate": "YYYY-MM-DD or null (optional)"
}
Respond with JSON only.`

// Build returns the prompt for instruction in the given mode.
// The same input always produces the same output.
func Build(mode Mode, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", ErrEmptyInstruction
	}

	switch mode {
	case ModeCreate:
		return fmt.Sprintf(createTemplate, instruction), nil
	case ModeUpdate:
		return fmt.Sprintf(updateTemplate, instruction), nil
	default:
		return "", fmt.Errorf("unknown prompt mode %s", mode)
	}
}
