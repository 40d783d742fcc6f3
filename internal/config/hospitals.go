package config

import (
	"fmt"
	"os"

	"bloodlink/internal/models"

	"gopkg.in/yaml.v3"
)

// HospitalSeed is one hospital entry in the seed file
type HospitalSeed struct {
	Name         string   `yaml:"name" validate:"required,max=200"`
	Address      string   `yaml:"address" validate:"required"`
	Barangay     string   `yaml:"barangay"`
	Phone        string   `yaml:"phone"`
	OpenTime     string   `yaml:"openTime" validate:"required,len=5"`
	CloseTime    string   `yaml:"closeTime" validate:"required,len=5"`
	DonationDays []string `yaml:"donationDays" validate:"required,min=1,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	SlotDuration int      `yaml:"slotDuration" validate:"required,min=5,max=60"`
	SlotsPerHour int      `yaml:"slotsPerHour" validate:"required,min=1,max=12"`
}

type hospitalsFile struct {
	Hospitals []HospitalSeed `yaml:"hospitals" validate:"required,min=1,dive"`
}

// LoadHospitals reads and validates a hospitals seed file
func LoadHospitals(path string) ([]models.Hospital, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hospitals file: %w", err)
	}
	return ParseHospitals(data)
}

// ParseHospitals decodes seed YAML into hospital models
func ParseHospitals(data []byte) ([]models.Hospital, error) {
	var file hospitalsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse hospitals file: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("hospitals file validation failed: %w", err)
	}

	hospitals := make([]models.Hospital, 0, len(file.Hospitals))
	for i, h := range file.Hospitals {
		hospital := models.Hospital{
			Name:         h.Name,
			Address:      h.Address,
			Barangay:     h.Barangay,
			Phone:        h.Phone,
			OpenTime:     h.OpenTime,
			CloseTime:    h.CloseTime,
			DonationDays: models.StringList(h.DonationDays),
			SlotDuration: h.SlotDuration,
			SlotsPerHour: h.SlotsPerHour,
		}
		if err := hospital.Schedule().Validate(); err != nil {
			return nil, fmt.Errorf("hospitals[%d] %q: %w", i, h.Name, err)
		}
		hospitals = append(hospitals, hospital)
	}
	return hospitals, nil
}
