package store

import (
	"context"

	apperrors "github.com/fuel-streams/streams/pkg/errors"
)

// FindNextBlockToSave implements spec.md §4.2 "Gap discovery": scans stored
// block heights ascending and reports every contiguous range of missing
// heights up to tip, inclusive.
func (s *GormStore) FindNextBlockToSave(ctx context.Context, tip uint64) ([]BlockHeightGap, error) {
	var heights []uint64
	if err := s.db.WithContext(ctx).Table("blocks").
		Order("block_height ASC").
		Pluck("block_height", &heights).Error; err != nil {
		return nil, apperrors.Wrap(err, "find_next_block_to_save: scanning blocks failed")
	}
	return computeGaps(heights, tip), nil
}

// computeGaps is the pure, directly testable core of gap discovery (spec.md
// invariant 6): given ascending stored heights and a tip, return every
// missing contiguous range.
func computeGaps(heights []uint64, tip uint64) []BlockHeightGap {
	if len(heights) == 0 {
		return []BlockHeightGap{{Start: 0, End: tip}}
	}

	var gaps []BlockHeightGap
	for i := 1; i < len(heights); i++ {
		prev, next := heights[i-1], heights[i]
		if next > prev+1 {
			gaps = append(gaps, BlockHeightGap{Start: prev + 1, End: next - 1})
		}
	}

	maxHeight := heights[len(heights)-1]
	if maxHeight < tip {
		gaps = append(gaps, BlockHeightGap{Start: maxHeight + 1, End: tip})
	}
	return gaps
}
