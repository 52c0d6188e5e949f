package ledger

// Resolution folds over like/unlike records. The ledger is append-only, so
// current state is always reconstructed client-side: for each author only the
// record with the highest Version timestamp counts. Records are processed in
// the order the index returns them (height descending); on a timestamp tie
// the record seen first, i.e. the one at the greater height, wins.

// LatestLikeByAuthor reduces a set of like/unlike records for one place to
// the winning record per author.
func LatestLikeByAuthor(records []Record) map[string]Record {
	latest := make(map[string]Record)
	for _, rec := range records {
		typ := Type(rec.TagValue(TagType))
		if typ != TypeLike && typ != TypeUnlike {
			continue
		}
		author := rec.TagValue(TagAuthor)
		if author == "" {
			continue
		}
		current, seen := latest[author]
		if !seen || rec.Version().After(current.Version()) {
			latest[author] = rec
		}
	}
	return latest
}

// CountLikes returns the number of authors whose latest record is a like.
func CountLikes(records []Record) int {
	count := 0
	for _, rec := range LatestLikeByAuthor(records) {
		if Type(rec.TagValue(TagType)) == TypeLike {
			count++
		}
	}
	return count
}

// LikeStatus reports whether the author's latest like/unlike record is a like.
func LikeStatus(records []Record, author string) bool {
	rec, ok := LatestLikeByAuthor(records)[author]
	return ok && Type(rec.TagValue(TagType)) == TypeLike
}

// GroupByPlace buckets records by their Place-ID tag, preserving order.
// Records without a Place-ID are dropped.
func GroupByPlace(records []Record) map[string][]Record {
	grouped := make(map[string][]Record)
	for _, rec := range records {
		placeID := rec.TagValue(TagPlaceID)
		if placeID == "" {
			continue
		}
		grouped[placeID] = append(grouped[placeID], rec)
	}
	return grouped
}

// LatestByAuthor returns the newest record per author, used for profile
// resolution where the latest profile record supersedes earlier ones.
func LatestByAuthor(records []Record) map[string]Record {
	latest := make(map[string]Record)
	for _, rec := range records {
		author := rec.TagValue(TagAuthor)
		if author == "" {
			continue
		}
		current, seen := latest[author]
		if !seen || rec.Version().After(current.Version()) {
			latest[author] = rec
		}
	}
	return latest
}
