package invites

import (
	"context"
	"math/rand/v2"
	"regexp"

	"github.com/hqops/invite-tracker/internal/metrics"
)

// codeAlphabet is the 62-character alphabet for the random suffix.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// suffixLength is the random portion of a code; together with the 4-digit
// employee ID prefix it yields a 16-character code.
const suffixLength = 12

var employeeIDPattern = regexp.MustCompile(`^\d{4}$`)

// randomSuffix draws n characters independently and uniformly from the
// alphanumeric alphabet.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(buf)
}

// Generate produces a code guaranteed absent from the store at the moment of
// the check: the employee ID followed by 12 random alphanumerics. The
// store-level existence check only reduces collision probability; the unique
// constraint enforced on insert remains the source of truth.
func (s *Service) Generate(_ context.Context, employeeID string) (string, error) {
	if !employeeIDPattern.MatchString(employeeID) {
		return "", ErrInvalidEmployeeID
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate := employeeID + randomSuffix(suffixLength)

		exists, err := s.codes.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}

		metrics.RecordGenerationCollision()
		s.log.Debug().
			Str("employee_id", employeeID).
			Int("attempt", attempt+1).
			Msg("Candidate code collided, retrying")
	}

	return "", ErrGenerationExhausted
}
