package scoring

import "github.com/jayant1554/credit-score-defi/internal/domain/model"

// Health column name for 1 - borrow_to_deposit_ratio.
const healthFeature = "health"

// CapitalStability is the mean of scaled total_deposited_usd and wallet_age_days.
func CapitalStability(fs []model.WalletFeatures, scale Scaler) []float64 {
	deposited := column(fs, func(f *model.WalletFeatures) float64 { return f.TotalDepositedUSD })
	age := column(fs, func(f *model.WalletFeatures) float64 { return f.WalletAgeDays })
	return mean2(
		scale(model.FeatureTotalDepositedUSD, deposited),
		scale(model.FeatureWalletAgeDays, age),
	)
}

// RepaymentBehavior is the mean of scaled repayment_ratio and
// 1 - borrow_to_deposit_ratio. The health term is taken before scaling and
// goes negative for wallets that borrowed more than they deposited.
func RepaymentBehavior(fs []model.WalletFeatures, scale Scaler) []float64 {
	repayment := column(fs, func(f *model.WalletFeatures) float64 { return f.RepaymentRatio })
	health := column(fs, func(f *model.WalletFeatures) float64 { return 1 - f.BorrowToDepositRatio })
	return mean2(
		scale(model.FeatureRepaymentRatio, repayment),
		scale(healthFeature, health),
	)
}

// RiskAdjustment is 0 for any wallet that has been liquidated, else 1.
func RiskAdjustment(fs []model.WalletFeatures) []float64 {
	return column(fs, func(f *model.WalletFeatures) float64 {
		if f.LiquidationCount > 0 {
			return 0
		}
		return 1
	})
}

// PaymentEngagement is the mean of scaled tx_frequency and tx_count.
func PaymentEngagement(fs []model.WalletFeatures, scale Scaler) []float64 {
	freq := column(fs, func(f *model.WalletFeatures) float64 { return f.TxFrequency })
	count := column(fs, func(f *model.WalletFeatures) float64 { return float64(f.TxCount) })
	return mean2(
		scale(model.FeatureTxFrequency, freq),
		scale(model.FeatureTxCount, count),
	)
}

func column(fs []model.WalletFeatures, get func(*model.WalletFeatures) float64) []float64 {
	out := make([]float64, len(fs))
	for i := range fs {
		out[i] = get(&fs[i])
	}
	return out
}

func mean2(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
