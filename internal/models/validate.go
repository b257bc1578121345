package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure below.
var ErrInvalid = errors.New("invalid entity")

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	return nil
}

func (n NewExtension) Validate() error {
	if err := required("number", n.Number); err != nil {
		return err
	}
	if err := required("name", n.Name); err != nil {
		return err
	}
	if !n.Protocol.Valid() {
		return fmt.Errorf("%w: invalid protocol %q, must be SIP or PJSIP", ErrInvalid, n.Protocol)
	}
	return nil
}

func (e Extension) Validate() error {
	if err := (NewExtension{Number: e.Number, Name: e.Name, Protocol: e.Protocol}).Validate(); err != nil {
		return err
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: invalid extension status %q", ErrInvalid, e.Status)
	}
	return nil
}

func (n NewTrunk) Validate() error {
	if err := required("name", n.Name); err != nil {
		return err
	}
	if err := required("host", n.Host); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: invalid trunk type %q, must be SIP, PJSIP or IAX2", ErrInvalid, n.Type)
	}
	return nil
}

func (t Trunk) Validate() error {
	if err := (NewTrunk{Name: t.Name, Type: t.Type, Host: t.Host}).Validate(); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: invalid trunk status %q", ErrInvalid, t.Status)
	}
	return nil
}

func (n NewQueue) Validate() error {
	if err := required("name", n.Name); err != nil {
		return err
	}
	if !n.Strategy.Valid() {
		return fmt.Errorf("%w: invalid strategy %q", ErrInvalid, n.Strategy)
	}
	for _, m := range n.Members {
		if !m.Status.Valid() {
			return fmt.Errorf("%w: member %s has invalid status %q", ErrInvalid, m.ID, m.Status)
		}
	}
	return nil
}

func (q Queue) Validate() error {
	if q.WaitingCalls < 0 {
		return fmt.Errorf("%w: negative waiting calls", ErrInvalid)
	}
	return NewQueue{Name: q.Name, Strategy: q.Strategy, Members: q.Members}.Validate()
}
