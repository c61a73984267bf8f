package reports

import "time"

// PaymentCount — способ оплаты с числом объявлений.
type PaymentCount struct {
	Method string
	Count  int
}

// SellerStat — продавец с числом объявлений и оборотом.
type SellerStat struct {
	SellerID   int64
	SellerName string
	Count      int
	Volume     float64
}

// BucketCount — ценовая корзина с числом объявлений.
type BucketCount struct {
	Bucket float64
	Count  int
}

// Report — сводка рынка за отчётное окно. Собирается только из
// архивных объявлений; частичных сводок не бывает.
type Report struct {
	Since         time.Time
	Until         time.Time
	Count         int
	Volume        float64
	AverageAmount float64
	TopPayments   []PaymentCount
	TopSellers    []SellerStat
	TopBuckets    []BucketCount
	DayVolume     map[string]float64
	HourHistogram [24]int
	BusiestHour   int
	NewSellers    int
}
