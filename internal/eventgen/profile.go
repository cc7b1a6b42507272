package eventgen

import (
	"math/rand"
	"sort"
)

// Profile is a wallet behavior archetype.
type Profile int

// Wallet profiles, in the order they are drawn.
const (
	ProfileSaver Profile = iota
	ProfileRepayer
	ProfileLeveraged
	ProfileLiquidated
)

// Profiles lists every profile.
var Profiles = []Profile{ProfileSaver, ProfileRepayer, ProfileLeveraged, ProfileLiquidated}

// profileWeights is the relative frequency of each profile.
var profileWeights = []int{40, 30, 20, 10}

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileSaver:
		return "saver"
	case ProfileRepayer:
		return "repayer"
	case ProfileLeveraged:
		return "leveraged"
	case ProfileLiquidated:
		return "liquidated"
	default:
		return "unknown"
	}
}

// Upstream action names.
const (
	ActionDeposit     = "deposit"
	ActionBorrow      = "borrow"
	ActionRepay       = "repay"
	ActionRedeem      = "redeemunderlying"
	ActionLiquidation = "liquidationcall"
)

// asset is a token with a reference USD price.
type asset struct {
	Symbol string
	Price  float64
}

var assets = []asset{
	{"USDC", 1.0},
	{"DAI", 1.0},
	{"USDT", 1.0},
	{"WETH", 3000},
	{"WMATIC", 0.9},
}

// step is one action of a wallet plan before it is rendered as a Record.
type step struct {
	Action string
	Day    float64
	USD    float64
}

// drawProfile picks a profile by profileWeights.
func drawProfile(r *rand.Rand) Profile {
	total := 0
	for _, w := range profileWeights {
		total += w
	}
	n := r.Intn(total)
	for i, w := range profileWeights {
		if n < w {
			return Profiles[i]
		}
		n -= w
	}
	return ProfileSaver
}

// plan lays out the actions of one wallet within spanDays.
func plan(r *rand.Rand, p Profile, spanDays int) []step {
	span := float64(spanDays)
	first := r.Float64() * span / 4
	// Every later action falls on or after the opening deposit.
	day := func() float64 { return first + r.Float64()*(span-first) }
	deposit := 100 + r.Float64()*9900

	steps := []step{{Action: ActionDeposit, Day: first, USD: deposit}}
	switch p {
	case ProfileSaver:
		for i := r.Intn(5); i > 0; i-- {
			steps = append(steps, step{Action: ActionDeposit, Day: day(), USD: 50 + r.Float64()*2000})
		}
		if r.Intn(3) == 0 {
			steps = append(steps, step{Action: ActionRedeem, Day: day(), USD: deposit * r.Float64() / 2})
		}
	case ProfileRepayer:
		borrowed := deposit * (0.2 + r.Float64()*0.4)
		steps = append(steps, step{Action: ActionBorrow, Day: day(), USD: borrowed})
		parts := 1 + r.Intn(3)
		for i := 0; i < parts; i++ {
			steps = append(steps, step{Action: ActionRepay, Day: day(), USD: borrowed / float64(parts)})
		}
	case ProfileLeveraged:
		borrowed := deposit * (0.7 + r.Float64()*0.25)
		steps = append(steps,
			step{Action: ActionBorrow, Day: day(), USD: borrowed},
			step{Action: ActionRepay, Day: day(), USD: borrowed * r.Float64() / 2},
		)
	case ProfileLiquidated:
		borrowed := deposit * (0.8 + r.Float64()*0.3)
		steps = append(steps,
			step{Action: ActionBorrow, Day: day(), USD: borrowed},
			step{Action: ActionLiquidation, Day: day(), USD: 0},
		)
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Day < steps[j].Day })
	return steps
}
