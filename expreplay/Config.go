package expreplay

import (
	"fmt"
)

// FieldConfig is the serializable description of an extra Field.
// An empty Dtype defaults to float32.
type FieldConfig struct {
	Name  string
	Shape []int
	Dtype string
}

// Field returns the Field described by the FieldConfig
func (f FieldConfig) Field() (Field, error) {
	field := NewField(f.Name, f.Shape...)
	if f.Dtype != "" {
		dt, err := ParseDtype(f.Dtype)
		if err != nil {
			return Field{}, fmt.Errorf("field: %w", err)
		}
		field = field.WithDtype(dt)
	}
	return field, field.validate()
}

// Config implements a specific configuration of a transition Buffer
type Config struct {
	MaxSize     int           // Maximum number of entries stored
	Seed        uint64        // Seed of the Buffer's generator
	ExtraFields []FieldConfig // Fields stored besides the defaults
}

// Validate checks a Config to ensure it describes a valid Buffer
func (c Config) Validate() error {
	if c.MaxSize < 0 {
		return fmt.Errorf("validate: replay buffer size must be "+
			"non-negative \n\twant(>=0) \n\thave(%v)", c.MaxSize)
	}

	seen := make(map[string]bool)
	for _, f := range TransitionFields(nil, nil) {
		seen[f.Name] = true
	}
	for _, fc := range c.ExtraFields {
		if _, err := fc.Field(); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		if seen[fc.Name] {
			return fmt.Errorf("validate: %w: %v", ErrDuplicateField, fc.Name)
		}
		seen[fc.Name] = true
	}
	return nil
}

// Create creates and returns the Buffer described by the Config, with
// the default transition fields for the given observation and action
// shapes plus any extra fields.
func (c Config) Create(obsShape, actionShape []int) (*Buffer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	b, err := NewTransitions(obsShape, actionShape, c.MaxSize, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	extra := make([]Field, len(c.ExtraFields))
	for i, fc := range c.ExtraFields {
		extra[i], _ = fc.Field()
	}
	if err := b.AddFields(extra...); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return b, nil
}
