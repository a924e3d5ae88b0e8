// Package referencedata serves the clinic and veterinarian directory from
// a YAML file, falling back to a built-in list.
package referencedata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"catcare/pkg/types"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout:
//
//	clinics:
//	  - id: auau
//	    name: Clínica Auau Miau
//	    veterinarian: Simone
//	    location: Rua das Flores, 120
type file struct {
	Clinics []*types.Clinic `yaml:"clinics"`
}

// Directory is an in-memory, read-only clinic directory.
type Directory struct {
	clinics []*types.Clinic
}

// Default is the directory used when no file is configured.
func Default() *Directory {
	return &Directory{clinics: []*types.Clinic{
		{ID: "1", Name: "Clínica Auau Miau", Veterinarian: "Simone"},
		{ID: "2", Name: "Vet Pet Centro", Veterinarian: "Carlos"},
	}}
}

// Load reads a directory file. A missing file yields the default directory.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read clinics file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse clinics file: %w", err)
	}

	seen := make(map[string]bool, len(f.Clinics))
	clinics := make([]*types.Clinic, 0, len(f.Clinics))
	for i, c := range f.Clinics {
		if c == nil {
			continue
		}
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		c.Veterinarian = strings.TrimSpace(c.Veterinarian)
		if c.ID == "" || c.Name == "" || c.Veterinarian == "" {
			return nil, fmt.Errorf("clinic %d: id, name and veterinarian are required", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("clinic %d: duplicate id %q", i+1, c.ID)
		}
		seen[c.ID] = true
		clinics = append(clinics, c)
	}

	return &Directory{clinics: clinics}, nil
}

func (d *Directory) Clinics(ctx context.Context) ([]*types.Clinic, error) {
	return append([]*types.Clinic(nil), d.clinics...), nil
}

func (d *Directory) ClinicByID(ctx context.Context, id string) (*types.Clinic, error) {
	for _, c := range d.clinics {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, types.ErrClinicNotFound
}

// ClinicByVeterinarian returns the first clinic of the veterinarian.
func (d *Directory) ClinicByVeterinarian(ctx context.Context, veterinarian string) (*types.Clinic, error) {
	for _, c := range d.clinics {
		if strings.EqualFold(c.Veterinarian, veterinarian) {
			return c, nil
		}
	}
	return nil, types.ErrClinicNotFound
}
