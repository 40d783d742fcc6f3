package rules

import (
	"errors"
	"fmt"
	"strings"
)

// BloodType is one of the eight ABO/Rh combinations
type BloodType string

const (
	ONeg  BloodType = "O-"
	OPos  BloodType = "O+"
	ANeg  BloodType = "A-"
	APos  BloodType = "A+"
	BNeg  BloodType = "B-"
	BPos  BloodType = "B+"
	ABNeg BloodType = "AB-"
	ABPos BloodType = "AB+"
)

// ErrUnknownBloodType is returned for anything outside the closed set of 8 types
var ErrUnknownBloodType = errors.New("unknown blood type")

// AllBloodTypes lists every supported type in display order
var AllBloodTypes = []BloodType{ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos}

// RarityBand groups blood types by population frequency
type RarityBand string

const (
	RarityCommon   RarityBand = "common"
	RarityUncommon RarityBand = "uncommon"
	RarityRare     RarityBand = "rare"
)

// RarityInfo describes how frequent a blood type is in the population
type RarityInfo struct {
	Percentage float64    `json:"percentage"`
	Band       RarityBand `json:"band"`
}

// donor type -> recipient types (red cell compatibility)
var canDonateTo = map[BloodType][]BloodType{
	ONeg:  {ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos},
	OPos:  {OPos, APos, BPos, ABPos},
	ANeg:  {ANeg, APos, ABNeg, ABPos},
	APos:  {APos, ABPos},
	BNeg:  {BNeg, BPos, ABNeg, ABPos},
	BPos:  {BPos, ABPos},
	ABNeg: {ABNeg, ABPos},
	ABPos: {ABPos},
}

// recipient type -> donor types
var canReceiveFrom = map[BloodType][]BloodType{
	ONeg:  {ONeg},
	OPos:  {ONeg, OPos},
	ANeg:  {ONeg, ANeg},
	APos:  {ONeg, OPos, ANeg, APos},
	BNeg:  {ONeg, BNeg},
	BPos:  {ONeg, OPos, BNeg, BPos},
	ABNeg: {ONeg, ANeg, BNeg, ABNeg},
	ABPos: {ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos},
}

var populationPercentage = map[BloodType]float64{
	OPos:  37.4,
	APos:  35.7,
	BPos:  8.5,
	ONeg:  6.6,
	ANeg:  6.3,
	ABPos: 3.4,
	BNeg:  1.5,
	ABNeg: 0.6,
}

// ParseBloodType normalises user input ("ab+", " O- ") into a BloodType
func ParseBloodType(s string) (BloodType, error) {
	bt := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	if !bt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBloodType, s)
	}
	return bt, nil
}

// Valid reports whether bt is one of the eight known types
func (bt BloodType) Valid() bool {
	_, ok := canDonateTo[bt]
	return ok
}

func (bt BloodType) String() string {
	return string(bt)
}

// CanDonate reports whether blood of type donor can be given to recipient
func CanDonate(donor, recipient BloodType) (bool, error) {
	recipients, err := CompatibleRecipients(donor)
	if err != nil {
		return false, err
	}
	if !recipient.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownBloodType, recipient)
	}
	for _, r := range recipients {
		if r == recipient {
			return true, nil
		}
	}
	return false, nil
}

// CompatibleRecipients returns the types a donor of type bt can give to
func CompatibleRecipients(bt BloodType) ([]BloodType, error) {
	recipients, ok := canDonateTo[bt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBloodType, bt)
	}
	return append([]BloodType(nil), recipients...), nil
}

// CompatibleDonors returns the types a recipient of type bt can receive from
func CompatibleDonors(bt BloodType) ([]BloodType, error) {
	donors, ok := canReceiveFrom[bt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBloodType, bt)
	}
	return append([]BloodType(nil), donors...), nil
}

// Rarity classifies a blood type by its population percentage.
// Bands: common >= 20%, uncommon >= 5%, rare below that.
func Rarity(bt BloodType) (RarityInfo, error) {
	pct, ok := populationPercentage[bt]
	if !ok {
		return RarityInfo{}, fmt.Errorf("%w: %q", ErrUnknownBloodType, bt)
	}

	band := RarityRare
	switch {
	case pct >= 20:
		band = RarityCommon
	case pct >= 5:
		band = RarityUncommon
	}
	return RarityInfo{Percentage: pct, Band: band}, nil
}

// IsRare is a convenience wrapper used by the gamification rules
func IsRare(bt BloodType) bool {
	info, err := Rarity(bt)
	return err == nil && info.Band == RarityRare
}
