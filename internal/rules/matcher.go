package rules

// AlertSubscriber is anything that can receive a blood request alert
type AlertSubscriber interface {
	GetBloodType() BloodType
	IsActive() bool
	WantsEmailAlerts() bool
}

// MatchDonors keeps the active donors with exactly the requested blood type
// who opted in to email alerts. Input order is preserved.
func MatchDonors[D AlertSubscriber](bloodType BloodType, donors []D) []D {
	matched := make([]D, 0, len(donors))
	for _, d := range donors {
		if !d.IsActive() || !d.WantsEmailAlerts() {
			continue
		}
		if d.GetBloodType() != bloodType {
			continue
		}
		matched = append(matched, d)
	}
	return matched
}
