package dataset

import (
	"fmt"
	"math/rand"
)

// TrainTestSplit partitions rows into train and test sets by ratio. The
// permutation comes from the given seed, so identical seeds produce identical
// splits.
func TrainTestSplit(d *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("dataset: test ratio %v out of (0, 1)", testRatio)
	}
	n := d.Rows()
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	if nTest == 0 {
		nTest = 1
	}

	test, err = d.Subset(perm[:nTest])
	if err != nil {
		return nil, nil, err
	}
	train, err = d.Subset(perm[nTest:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// KFold partitions row indices into k folds using a seeded permutation.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("dataset: fold count %d must be at least 2", k)
	}
	if n < k {
		return nil, fmt.Errorf("dataset: %d rows cannot fill %d folds", n, k)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds, nil
}

// FoldSplit returns train and holdout row indices for one fold.
func FoldSplit(folds [][]int, fold int) (train, holdout []int) {
	for i, f := range folds {
		if i == fold {
			holdout = append(holdout, f...)
		} else {
			train = append(train, f...)
		}
	}
	return train, holdout
}
