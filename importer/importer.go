package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"hrtraining/models/training"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ErrProgramExists is returned when a definition names an id already in use.
var ErrProgramExists = errors.New("program already exists")

// Parse decodes and validates a YAML program definition. Unknown keys are rejected.
func Parse(r io.Reader) (*ProgramDef, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def ProgramDef
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode program definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Import writes a program with all modules, contents, questions and options in
// one transaction.
func Import(ctx context.Context, db *gorm.DB, r io.Reader) (training.Program, error) {
	def, err := Parse(r)
	if err != nil {
		return training.Program{}, err
	}
	program := def.Model()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&training.Program{}).Where("id = ?", program.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrProgramExists, program.ID)
		}
		return tx.Create(&program).Error
	})
	if err != nil {
		return training.Program{}, err
	}

	contents, questions := 0, 0
	for _, m := range program.Modules {
		contents += len(m.Contents)
		for _, c := range m.Contents {
			questions += len(c.Questions)
		}
	}
	log.Printf("[IMPORTER] Imported program %s (%q): %d modules, %d contents, %d questions",
		program.ID, program.Title, len(program.Modules), contents, questions)
	return program, nil
}

// ImportFile imports the definition stored at path.
func ImportFile(ctx context.Context, db *gorm.DB, path string) (training.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return training.Program{}, err
	}
	defer f.Close()
	return Import(ctx, db, f)
}
