package reports

import (
	"testing"
	"time"

	"serotonyl.ru/kamasbot/internal/features/listings"
)

func listing(owner int64, name string, amount float64, payment string, created time.Time) *listings.Listing {
	return &listings.Listing{
		OwnerID: owner, OwnerName: name, Amount: amount,
		Payment: payment, CreatedAt: created,
	}
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	since := day1.AddDate(0, 0, -1)
	until := day2.AddDate(0, 0, 1)

	ls := []*listings.Listing{
		listing(1, "alice", 10_000_000, "PayPal", day1),
		listing(1, "alice", 5_000_000, "PayPal", day1.Add(time.Hour)),
		listing(2, "bob", 20_000_000, "Wise", day2),
		listing(3, "carol", 1_500, "PayPal", day2.Add(time.Minute)),
	}
	newSellers := map[int64]bool{3: true}

	r := Summarize(ls, newSellers, since, until)

	if r.Count != 4 {
		t.Errorf("Count = %d, ожидали 4", r.Count)
	}
	if r.Volume != 35_001_500 {
		t.Errorf("Volume = %v, ожидали 35001500", r.Volume)
	}
	if want := 35_001_500.0 / 4; r.AverageAmount != want {
		t.Errorf("AverageAmount = %v, ожидали %v", r.AverageAmount, want)
	}
	if r.NewSellers != 1 {
		t.Errorf("NewSellers = %d, ожидали 1", r.NewSellers)
	}

	if len(r.TopPayments) != 2 || r.TopPayments[0].Method != "PayPal" || r.TopPayments[0].Count != 3 {
		t.Errorf("TopPayments = %+v", r.TopPayments)
	}

	if len(r.TopSellers) != 3 || r.TopSellers[0].SellerName != "bob" || r.TopSellers[1].SellerName != "alice" {
		t.Errorf("TopSellers = %+v", r.TopSellers)
	}
	if r.TopSellers[1].Count != 2 || r.TopSellers[1].Volume != 15_000_000 {
		t.Errorf("статистика alice = %+v", r.TopSellers[1])
	}

	if r.DayVolume["2026-08-24"] != 15_000_000 || r.DayVolume["2026-08-25"] != 20_001_500 {
		t.Errorf("DayVolume = %+v", r.DayVolume)
	}

	// Корзина 1500 → 1000, миллионные суммы в своих корзинах.
	found := false
	for _, b := range r.TopBuckets {
		if b.Bucket == 1000 && b.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("корзина 1000 не найдена: %+v", r.TopBuckets)
	}
}

func TestSummarizeBusiestHourTie(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// Часы 18 и 9 по два объявления; 18-й час встретился раньше.
	ls := []*listings.Listing{
		listing(1, "a", 1000, "PayPal", base.Add(18*time.Hour)),
		listing(1, "a", 1000, "PayPal", base.Add(24*time.Hour).Add(9*time.Hour)),
		listing(1, "a", 1000, "PayPal", base.Add(48*time.Hour).Add(18*time.Hour)),
		listing(1, "a", 1000, "PayPal", base.Add(72*time.Hour).Add(9*time.Hour)),
	}

	r := Summarize(ls, nil, base, base.AddDate(0, 0, 4))
	if r.BusiestHour != 18 {
		t.Errorf("BusiestHour = %d, ожидали 18 (ничья решается ранним появлением)", r.BusiestHour)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	now := time.Now().UTC()
	r := Summarize(nil, nil, now.AddDate(0, 0, -7), now)

	if r.Count != 0 || r.Volume != 0 || r.AverageAmount != 0 {
		t.Errorf("пустая сводка должна быть нулевой: %+v", r)
	}
	if len(r.TopPayments) != 0 || len(r.TopSellers) != 0 || len(r.TopBuckets) != 0 {
		t.Errorf("пустая сводка не должна иметь топов: %+v", r)
	}
}
