package allocator

import "github.com/simaogato/wealthflow-allocator/internal/domain"

// ReconcileBuckets merges tracked bucket values with the target table. Every
// key of either map yields a PerBucket row: untracked targets get value 0 and
// buckets without a target get target 0. PerBucketActual holds the buckets
// with a nonzero tracked value.
func ReconcileBuckets(actuals map[string]float64, targets map[string]float64, total float64) ([]domain.PerBucket, []domain.PerBucketActual) {
	union := make(map[string]float64, len(actuals)+len(targets))
	for b := range targets {
		union[b] = 0
	}
	for b := range actuals {
		union[b] = 0
	}

	perBucket := make([]domain.PerBucket, 0, len(union))
	perActual := make([]domain.PerBucketActual, 0, len(actuals))

	for _, b := range sortedKeys(union) {
		value := actuals[b]
		target := targets[b]
		current := domain.Percent(value, total)

		perBucket = append(perBucket, domain.PerBucket{
			Bucket:         b,
			Value:          value,
			TargetPercent:  target,
			CurrentPercent: current,
			Deviation:      current - target,
		})

		if value != 0 {
			perActual = append(perActual, domain.PerBucketActual{
				Bucket:         b,
				Value:          value,
				CurrentPercent: current,
			})
		}
	}

	return perBucket, perActual
}
