package model

// Feature column names in regression matrix order.
const (
	FeatureWalletAgeDays        = "wallet_age_days"
	FeatureTxCount              = "tx_count"
	FeatureTxFrequency          = "tx_frequency"
	FeatureTotalDepositedUSD    = "total_deposited_usd"
	FeatureTotalBorrowedUSD     = "total_borrowed_usd"
	FeatureTotalRepaidUSD       = "total_repaid_usd"
	FeatureLiquidationCount     = "liquidation_count"
	FeatureBorrowToDepositRatio = "borrow_to_deposit_ratio"
	FeatureRepaymentRatio       = "repayment_ratio"
)

// FeatureNames returns the feature columns in the order Vector emits them.
func FeatureNames() []string {
	return []string{
		FeatureWalletAgeDays,
		FeatureTxCount,
		FeatureTxFrequency,
		FeatureTotalDepositedUSD,
		FeatureTotalBorrowedUSD,
		FeatureTotalRepaidUSD,
		FeatureLiquidationCount,
		FeatureBorrowToDepositRatio,
		FeatureRepaymentRatio,
	}
}

// WalletFeatures is the per-wallet behavioral feature vector.
type WalletFeatures struct {
	Wallet               string  `json:"userWallet"`
	WalletAgeDays        float64 `json:"wallet_age_days"`
	TxCount              int     `json:"tx_count"`
	TxFrequency          float64 `json:"tx_frequency"`
	TotalDepositedUSD    float64 `json:"total_deposited_usd"`
	TotalBorrowedUSD     float64 `json:"total_borrowed_usd"`
	TotalRepaidUSD       float64 `json:"total_repaid_usd"`
	LiquidationCount     int     `json:"liquidation_count"`
	BorrowToDepositRatio float64 `json:"borrow_to_deposit_ratio"`
	RepaymentRatio       float64 `json:"repayment_ratio"`
}

// Vector returns the features as a row of the regression matrix.
func (f *WalletFeatures) Vector() []float64 {
	return []float64{
		f.WalletAgeDays,
		float64(f.TxCount),
		f.TxFrequency,
		f.TotalDepositedUSD,
		f.TotalBorrowedUSD,
		f.TotalRepaidUSD,
		float64(f.LiquidationCount),
		f.BorrowToDepositRatio,
		f.RepaymentRatio,
	}
}

// Matrix stacks the vectors of fs row by row.
func Matrix(fs []WalletFeatures) [][]float64 {
	rows := make([][]float64, len(fs))
	for i := range fs {
		rows[i] = fs[i].Vector()
	}
	return rows
}

// ScoreRecord is the terminal output for one wallet.
type ScoreRecord struct {
	UserWallet     string `json:"userWallet"`
	RuleBasedScore int    `json:"rule_based_score"`
	CreditScore    int    `json:"credit_score"`
}
