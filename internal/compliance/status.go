package compliance

import (
	"time"

	"github.com/nikhilbhutani/agencyhub/internal/models"
)

// ExpiringSoonDays is the window in which a current item is flagged.
const ExpiringSoonDays = 30

// DaysUntilExpiration counts whole calendar days from now to the expiration
// date in UTC. It is negative once the date has passed and nil when the item
// does not expire.
func DaysUntilExpiration(item *models.ComplianceItem, now time.Time) *int {
	if item.ExpirationDate == nil {
		return nil
	}
	days := int(item.ExpirationDate.Time().Sub(dateOf(now)).Hours() / 24)
	return &days
}

// DeriveStatus applies the priority expired > expiring_soon >
// pending_verification > ok.
func DeriveStatus(item *models.ComplianceItem, now time.Time) models.ComplianceStatus {
	if days := DaysUntilExpiration(item, now); days != nil {
		if *days < 0 {
			return models.ComplianceStatusExpired
		}
		if *days <= ExpiringSoonDays {
			return models.ComplianceStatusExpiringSoon
		}
	}
	if item.HasDocument() && !item.IsVerified {
		return models.ComplianceStatusPendingVerification
	}
	return models.ComplianceStatusOK
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
