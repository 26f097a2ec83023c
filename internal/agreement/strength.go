package agreement

// Strength is a descriptive label for a kappa value (Landis & Koch, 1977).
type Strength string

const (
	StrengthUndefined     Strength = "undefined"
	StrengthPoor          Strength = "poor"
	StrengthSlight        Strength = "slight"
	StrengthFair          Strength = "fair"
	StrengthModerate      Strength = "moderate"
	StrengthSubstantial   Strength = "substantial"
	StrengthAlmostPerfect Strength = "almost perfect"
)

// Interpret labels a kappa value. A nil kappa is StrengthUndefined.
func Interpret(kappa *float64) Strength {
	if kappa == nil {
		return StrengthUndefined
	}
	k := *kappa
	switch {
	case k < 0:
		return StrengthPoor
	case k <= 0.20:
		return StrengthSlight
	case k <= 0.40:
		return StrengthFair
	case k <= 0.60:
		return StrengthModerate
	case k <= 0.80:
		return StrengthSubstantial
	}
	return StrengthAlmostPerfect
}
