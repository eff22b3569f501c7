// Package profile implements the registry of named backing-server
// connection profiles.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/topicmux/topicmux/internal/model"
	"github.com/topicmux/topicmux/pkg/logger"
	"github.com/topicmux/topicmux/pkg/types"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when a profile does not exist in the registry.
var ErrProfileNotFound = errors.New("connection profile not found")

// Service provides CRUD operations over stored connection profiles.
type Service struct {
	db  *gorm.DB
	log logger.Logger
}

// NewService creates a new profile registry service.
func NewService(db *gorm.DB, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// Upsert validates and stores a profile, replacing any existing profile with
// the same name.
func (s *Service) Upsert(p *types.ConnectionProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	record, err := toModel(p)
	if err != nil {
		return err
	}

	var existing model.ConnectionProfile
	err = s.db.Where("name = ?", p.Name).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		if err := s.db.Save(record).Error; err != nil {
			return fmt.Errorf("failed to update profile '%s': %w", p.Name, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create profile '%s': %w", p.Name, err)
		}
	default:
		return fmt.Errorf("failed to look up profile '%s': %w", p.Name, err)
	}

	s.log.Info("Stored connection profile", logger.Field{Key: "profile", Value: p.Name})
	return nil
}

// Get returns the stored profile with the given name.
func (s *Service) Get(name string) (*types.ConnectionProfile, error) {
	var record model.ConnectionProfile
	if err := s.db.Where("name = ?", name).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile '%s': %w", name, err)
	}
	return fromModel(&record)
}

// List returns all stored profiles.
func (s *Service) List() ([]*types.ConnectionProfile, error) {
	var records []model.ConnectionProfile
	if err := s.db.Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*types.ConnectionProfile, 0, len(records))
	for i := range records {
		p, err := fromModel(&records[i])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Delete removes the profile with the given name.
func (s *Service) Delete(name string) error {
	result := s.db.Where("name = ?", name).Delete(&model.ConnectionProfile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete profile '%s': %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	s.log.Info("Deleted connection profile", logger.Field{Key: "profile", Value: name})
	return nil
}

// ResolvePassword resolves the profile's password.
// Precedence: inline password, then environment variable, then file.
// Returns an empty string when the profile carries no secret at all.
func ResolvePassword(p *types.ConnectionProfile) (string, error) {
	if p.Password != "" {
		return p.Password, nil
	}

	if p.PasswordRef.Env != "" {
		value, ok := os.LookupEnv(p.PasswordRef.Env)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed, nil
			}
		}
		if p.PasswordRef.File == "" {
			return "", fmt.Errorf("environment variable %s is not set or empty", p.PasswordRef.Env)
		}
	}

	if p.PasswordRef.File != "" {
		data, err := os.ReadFile(p.PasswordRef.File)
		if err != nil {
			return "", fmt.Errorf("failed to read password file %s: %w", p.PasswordRef.File, err)
		}
		trimmed := strings.TrimSpace(string(data))
		if trimmed == "" {
			return "", fmt.Errorf("password file %s is empty", p.PasswordRef.File)
		}
		return trimmed, nil
	}

	return "", nil
}

func toModel(p *types.ConnectionProfile) (*model.ConnectionProfile, error) {
	var properties []byte
	if len(p.Properties) > 0 {
		var err error
		properties, err = json.Marshal(p.Properties)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize profile properties: %w", err)
		}
	}
	return &model.ConnectionProfile{
		Name:         p.Name,
		Description:  p.Description,
		URL:          p.URL,
		Principal:    p.Principal,
		Password:     p.Password,
		PasswordEnv:  p.PasswordRef.Env,
		PasswordFile: p.PasswordRef.File,
		Properties:   properties,
	}, nil
}

func fromModel(record *model.ConnectionProfile) (*types.ConnectionProfile, error) {
	p := &types.ConnectionProfile{
		Name:        record.Name,
		Description: record.Description,
		URL:         record.URL,
		Principal:   record.Principal,
		Password:    record.Password,
		PasswordRef: types.PasswordRef{
			Env:  record.PasswordEnv,
			File: record.PasswordFile,
		},
	}
	if len(record.Properties) > 0 {
		if err := json.Unmarshal(record.Properties, &p.Properties); err != nil {
			return nil, fmt.Errorf("failed to parse properties of profile '%s': %w", record.Name, err)
		}
	}
	return p, nil
}
