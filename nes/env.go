package nes

import (
	"errors"
	"fmt"
)

// ErrEnvDone is returned by Env.Step once an episode has ended and Reset
// has not been called.
var ErrEnvDone = errors.New("cannot step a done environment, call Reset")

// Hooks customise an Env per game. Reward, Done and Info are evaluated after
// every frame; the reset hooks run around Reset and RestoreSnapshot.
type Hooks interface {
	Reward(e *Emulator) float64
	Done(e *Emulator) bool
	Info(e *Emulator) map[string]any
	WillReset(e *Emulator)
	DidReset(e *Emulator)
	DidStep(e *Emulator, done bool)
}

// NopHooks never rewards and never ends an episode. Embed it to override
// only the hooks a game needs.
type NopHooks struct{}

func (NopHooks) Reward(*Emulator) float64 { return 0 }
func (NopHooks) Done(*Emulator) bool { return false }
func (NopHooks) Info(*Emulator) map[string]any { return map[string]any{} }
func (NopHooks) WillReset(*Emulator) {}
func (NopHooks) DidReset(*Emulator) {}
func (NopHooks) DidStep(*Emulator, bool) {}

// Env runs episodes on an Emulator. A new Env is done until Reset is called.
type Env struct {
	emu   *Emulator
	hooks Hooks
	done  bool
	// last slot written by Snapshot, -1 when there is none
	last int
}

func NewEnv(emu *Emulator, hooks Hooks) *Env {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Env{emu: emu, hooks: hooks, done: true, last: -1}
}

func (v *Env) Emulator() *Emulator { return v.emu }

func (v *Env) Done() bool { return v.done }

// Reset starts an episode from the most recent snapshot, or from a hardware
// reset when no snapshot has been taken.
func (v *Env) Reset() (ScreenView, error) {
	v.hooks.WillReset(v.emu)
	if v.last >= 0 {
		if err := v.emu.Restore(v.last); err != nil {
			return ScreenView{}, err
		}
	} else {
		v.emu.Reset()
	}
	v.hooks.DidReset(v.emu)
	v.done = false
	return v.emu.ScreenBuffer(), nil
}

// Step holds action on controller 0 for one frame.
func (v *Env) Step(action uint8) (reward float64, done bool, info map[string]any, err error) {
	if v.done {
		return 0, true, nil, ErrEnvDone
	}
	pad, err := v.emu.Controller(0)
	if err != nil {
		return 0, false, nil, err
	}
	*pad = action
	v.emu.Step()

	reward = v.hooks.Reward(v.emu)
	v.done = v.hooks.Done(v.emu)
	info = v.hooks.Info(v.emu)
	v.hooks.DidStep(v.emu, v.done)
	return reward, v.done, info, nil
}

// Snapshot backs the machine up into slot and makes it the Reset target.
func (v *Env) Snapshot(slot int) error {
	if err := v.emu.Backup(slot); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	v.last = slot
	return nil
}

// RestoreSnapshot loads slot and resumes the episode from it.
func (v *Env) RestoreSnapshot(slot int) error {
	if err := v.emu.Restore(slot); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	v.hooks.DidReset(v.emu)
	v.done = false
	return nil
}
