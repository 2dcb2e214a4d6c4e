package block

// Facing 2-битная ориентация блока (значение data для ступеней).
// Ступени «смотрят» наружу от платформы, поэтому код направления важен только для них.
type Facing uint8

const (
	FacingEast  Facing = 0
	FacingWest  Facing = 1
	FacingSouth Facing = 2
	FacingNorth Facing = 3

	// FacingNone используется для блоков без ориентации
	FacingNone Facing = 0
)

// Valid проверяет, что значение укладывается в 2 бита
func (f Facing) Valid() bool {
	return f <= 3
}

func (f Facing) String() string {
	switch f {
	case FacingEast:
		return "east"
	case FacingWest:
		return "west"
	case FacingSouth:
		return "south"
	case FacingNorth:
		return "north"
	default:
		return "invalid"
	}
}
