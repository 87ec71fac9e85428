package storage

// Row types mirror the tables one to one. Timestamps are TEXT in
// "2006-01-02 15:04:05" form so that string comparison orders them.

type TransactionRow struct {
	ID          int64
	Date        string
	Description string
	Amount      float64
	Category    string
}

type SubscriptionRow struct {
	ID         int64
	Name       string
	Category   string
	Amount     float64
	DayOfMonth int64
	Active     int64
}

type CategoryMetaRow struct {
	Category string
	Meta     string
}

type TargetsRow struct {
	Needs   float64
	Wants   float64
	Savings float64
}

type BucketRow struct {
	ID        int64
	Name      string
	Category  string
	Goal      float64
	Current   float64
	Status    string
	CreatedAt string
	UpdatedAt string
}

type PayrollRow struct {
	ID      int64
	PayDate string
	Gross   float64
	Tax     float64
	K401    float64
	HSA     float64
	ESPP    float64
	Other   float64
	Notes   string
}
