package store

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mangaq/internal/queryir"
)

// SeedFile is the YAML form of a directory snapshot.
//
//	users: [oda, toriyama]
//	kinds: [manga, manhwa]
//	tags:
//	  - {name: romance, sex: unisex}
type SeedFile struct {
	Users []string  `yaml:"users,omitempty"`
	Kinds []string  `yaml:"kinds,omitempty"`
	Tags  []SeedTag `yaml:"tags,omitempty"`
}

// SeedTag is one tag entry. Sex is "female", "male" or "unisex"; empty
// means unisex.
type SeedTag struct {
	Name string `yaml:"name"`
	Sex  string `yaml:"sex,omitempty"`
}

// Counts reports how many rows a directory table holds.
type Counts struct {
	Users int `json:"users"`
	Kinds int `json:"kinds"`
	Tags  int `json:"tags"`
}

// LoadSeedFile reads and parses a seed YAML file.
// Unknown keys are rejected to catch typos.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses seed YAML.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i, tag := range seed.Tags {
		if tag.Name == "" {
			return nil, fmt.Errorf("tags[%d]: name is required", i)
		}
		if _, err := tag.sex(); err != nil {
			return nil, fmt.Errorf("tags[%d]: %w", i, err)
		}
	}
	return &seed, nil
}

func (t SeedTag) sex() (queryir.TagSex, error) {
	if t.Sex == "" {
		return queryir.TagSexUnisex, nil
	}
	sex, ok := queryir.ParseTagSex(t.Sex)
	if !ok {
		return 0, fmt.Errorf("unknown sex %q: must be female, male or unisex", t.Sex)
	}
	return sex, nil
}

// Seed inserts every entry of seed in one transaction. Entries that already
// exist are left alone, so seeding twice is harmless.
func (s *Store) Seed(ctx context.Context, seed *SeedFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	for _, name := range seed.Users {
		if _, err := addNamed(ctx, tx, s.newID, "users", name); err != nil {
			return fmt.Errorf("seed user %q: %w", name, err)
		}
	}
	for _, name := range seed.Kinds {
		if _, err := addNamed(ctx, tx, s.newID, "kinds", name); err != nil {
			return fmt.Errorf("seed kind %q: %w", name, err)
		}
	}
	for _, tag := range seed.Tags {
		sex, err := tag.sex()
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", tag.Name, err)
		}
		if _, err := addTag(ctx, tx, s.newID, tag.Name, sex); err != nil {
			return fmt.Errorf("seed tag %q: %w", tag.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

// Count returns the size of each directory table.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM kinds),
			(SELECT COUNT(*) FROM tags)
	`).Scan(&c.Users, &c.Kinds, &c.Tags)
	if err != nil {
		return Counts{}, fmt.Errorf("count: %w", err)
	}
	return c, nil
}
