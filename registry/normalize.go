package registry

import (
	"fmt"
	"math/big"
	"strings"

	"crowdfund-sync/chain"
	"crowdfund-sync/models"
)

// Normalize coerces a raw wire record into a canonical Campaign. Numeric
// fields accept base-10 or 0x-prefixed hex strings; the parsed integers
// round-trip losslessly back to their decimal representation.
func Normalize(id uint64, raw chain.RawCampaign) (models.Campaign, error) {
	goal, err := parseWireUint(raw.Goal)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("goal: %w", err)
	}
	raised, err := parseWireUint(raw.AmountRaised)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("amountRaised: %w", err)
	}
	deadline, err := parseWireUint(raw.Deadline)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("deadline: %w", err)
	}
	if !deadline.IsUint64() {
		return models.Campaign{}, fmt.Errorf("deadline out of range: %s", raw.Deadline)
	}
	return models.Campaign{
		ID:           id,
		Goal:         goal,
		AmountRaised: raised,
		Deadline:     deadline.Uint64(),
	}, nil
}

func parseWireUint(s string) (*big.Int, error) {
	v := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		base = 16
		v = v[2:]
	}
	n, ok := new(big.Int).SetString(v, base)
	if !ok {
		return nil, fmt.Errorf("not an unsigned integer: %q", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative value: %q", s)
	}
	return n, nil
}
