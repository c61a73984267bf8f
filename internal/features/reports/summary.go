package reports

import (
	"math"
	"sort"
	"time"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/listings"
)

// bucketSize — шаг ценовых корзин в камасах.
const bucketSize = 1000

// Summarize агрегирует архивные объявления в сводку рынка.
// newSellerIDs — продавцы без объявлений до отчётного окна.
// Объявления подаются в хронологическом порядке: от него зависит
// разрешение ничьих в гистограмме часов.
func Summarize(ls []*listings.Listing, newSellerIDs map[int64]bool, since, until time.Time) *Report {
	r := &Report{
		Since:     since,
		Until:     until,
		Count:     len(ls),
		DayVolume: make(map[string]float64),
	}

	payments := make(map[string]int)
	sellers := make(map[int64]*SellerStat)
	buckets := make(map[float64]int)
	hourFirstSeen := make(map[int]int)
	seenNew := make(map[int64]bool)

	for i, l := range ls {
		r.Volume += l.Amount
		payments[l.Payment]++
		r.DayVolume[common.DayKey(l.CreatedAt)] += l.Amount

		hour := l.CreatedAt.UTC().Hour()
		r.HourHistogram[hour]++
		if _, ok := hourFirstSeen[hour]; !ok {
			hourFirstSeen[hour] = i
		}

		sv, ok := sellers[l.OwnerID]
		if !ok {
			sv = &SellerStat{SellerID: l.OwnerID, SellerName: l.OwnerName}
			sellers[l.OwnerID] = sv
		}
		sv.Count++
		sv.Volume += l.Amount

		buckets[math.Floor(l.Amount/bucketSize)*bucketSize]++

		if newSellerIDs[l.OwnerID] && !seenNew[l.OwnerID] {
			seenNew[l.OwnerID] = true
			r.NewSellers++
		}
	}

	if r.Count > 0 {
		r.AverageAmount = r.Volume / float64(r.Count)
	}
	r.BusiestHour = busiestHour(r.HourHistogram, hourFirstSeen)
	r.TopPayments = topPayments(payments, 3)
	r.TopSellers = topSellers(sellers, 3)
	r.TopBuckets = topBuckets(buckets, 3)
	return r
}

// busiestHour — час с максимумом объявлений; ничья уходит часу,
// который встретился в ленте раньше.
func busiestHour(hist [24]int, firstSeen map[int]int) int {
	best := 0
	for h := 1; h < 24; h++ {
		switch {
		case hist[h] > hist[best]:
			best = h
		case hist[h] == hist[best] && hist[h] > 0 && firstSeen[h] < firstSeen[best]:
			best = h
		}
	}
	return best
}

func topPayments(counts map[string]int, n int) []PaymentCount {
	all := make([]PaymentCount, 0, len(counts))
	for method, count := range counts {
		all = append(all, PaymentCount{Method: method, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Method < all[j].Method
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func topSellers(sellers map[int64]*SellerStat, n int) []SellerStat {
	all := make([]SellerStat, 0, len(sellers))
	for _, sv := range sellers {
		all = append(all, *sv)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Volume != all[j].Volume {
			return all[i].Volume > all[j].Volume
		}
		return all[i].SellerID < all[j].SellerID
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func topBuckets(buckets map[float64]int, n int) []BucketCount {
	all := make([]BucketCount, 0, len(buckets))
	for bucket, count := range buckets {
		all = append(all, BucketCount{Bucket: bucket, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Bucket < all[j].Bucket
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
