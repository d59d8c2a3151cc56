package widget

import "context"

// FetchCardRatings keeps the compact summary of every listed article live.
// Articles without a card-rating-{id} element on the page are skipped.
func FetchCardRatings(ctx context.Context, ratings RatingWatcher, doc Document, articleIDs []string) Group {
	seen := make(map[string]bool, len(articleIDs))
	var group Group

	for _, id := range articleIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		el, ok := doc.Element(CardRatingID(id))
		if !ok {
			continue
		}
		group = append(group, bind(ratings.Watch(ctx, id), el, RenderCardRating))
	}
	return group
}
