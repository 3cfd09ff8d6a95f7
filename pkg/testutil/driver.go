package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/specforge/specinit/pkg/prompt"
)

// ScriptedDriver replays canned answers. Input applies the validator and
// consumes the next answer on failure, like a user re-typing; blank input
// takes the default. Running out of answers is an error.
type ScriptedDriver struct {
	mu       sync.Mutex
	Inputs   []string
	Confirms []bool

	// Asked records every input prompt message with its default
	Asked []prompt.InputConfig
	// Rejected records validation failures in order
	Rejected []string
	// Infos records Info messages
	Infos []string
	// Err is returned by the next call when set
	Err error
}

// NewScriptedDriver returns a driver that answers inputs in order
func NewScriptedDriver(inputs ...string) *ScriptedDriver {
	return &ScriptedDriver{Inputs: inputs}
}

// WithConfirms queues confirmation answers
func (d *ScriptedDriver) WithConfirms(answers ...bool) *ScriptedDriver {
	d.Confirms = append(d.Confirms, answers...)
	return d
}

func (d *ScriptedDriver) Input(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Err != nil {
		return "", d.Err
	}
	d.Asked = append(d.Asked, cfg)

	for {
		if len(d.Inputs) == 0 {
			return "", fmt.Errorf("no scripted answer for %q", cfg.Message)
		}
		answer := d.Inputs[0]
		d.Inputs = d.Inputs[1:]
		if strings.TrimSpace(answer) == "" {
			answer = cfg.Default
		}
		if cfg.Validator != nil {
			if err := cfg.Validator(answer); err != nil {
				d.Rejected = append(d.Rejected, fmt.Sprintf("%s %v", cfg.Message, err))
				continue
			}
		}
		return answer, nil
	}
}

func (d *ScriptedDriver) Confirm(ctx context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if d.Err != nil {
		return false, d.Err
	}
	if len(d.Confirms) == 0 {
		return cfg.Default, nil
	}
	answer := d.Confirms[0]
	d.Confirms = d.Confirms[1:]
	return answer, nil
}

func (d *ScriptedDriver) Info(ctx context.Context, msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Infos = append(d.Infos, msg)
	return ctx.Err()
}
