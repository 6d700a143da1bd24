package services

import (
	"sort"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

// LotRanking is the read-time projection over a lot's full bid set.
// It is recomputed on every read and by the close sweep, from the same
// function, so the two can never disagree.
type LotRanking struct {
	// Leader is the bid with the highest amount; among equal amounts
	// the earliest bid wins. Nil when the lot has no bids.
	Leader *models.Bid
	// BestByUser holds each client's own best bid under the same rule.
	BestByUser map[string]*models.Bid
}

// RankLotBids computes the leading bid for a lot. Only a client's
// highest bid counts for ranking; earlier equal amounts beat later
// ones.
func RankLotBids(bids []models.Bid) LotRanking {
	ranking := LotRanking{BestByUser: make(map[string]*models.Bid, len(bids))}

	for i := range bids {
		bid := &bids[i]
		best, ok := ranking.BestByUser[bid.UserID]
		if !ok || beats(bid, best) {
			ranking.BestByUser[bid.UserID] = bid
		}
	}

	contenders := make([]*models.Bid, 0, len(ranking.BestByUser))
	for _, bid := range ranking.BestByUser {
		contenders = append(contenders, bid)
	}
	sort.Slice(contenders, func(i, j int) bool {
		return beats(contenders[i], contenders[j])
	})

	if len(contenders) > 0 {
		ranking.Leader = contenders[0]
	}
	return ranking
}

// beats reports whether a outranks b: higher amount, or equal amount
// placed earlier. Bid ID is the final tie-break to keep the order
// total.
func beats(a, b *models.Bid) bool {
	switch a.Amount.Cmp(b.Amount) {
	case 1:
		return true
	case -1:
		return false
	}
	if !a.BidTime.Equal(b.BidTime) {
		return a.BidTime.Before(b.BidTime)
	}
	return a.ID < b.ID
}

// ProjectBidStatus derives a bid's status relative to the lot's leader
// and the auction's state. Nothing is persisted here; the close sweep
// snapshots the same projection once, at close time.
func ProjectBidStatus(bid models.Bid, ranking LotRanking, auctionStatus models.AuctionStatus, awardedBidID string) models.BidStatus {
	switch auctionStatus {
	case models.AuctionClosed:
		if awardedBidID != "" && bid.ID == awardedBidID {
			return models.BidWinning
		}
		return models.BidLost
	case models.AuctionCancelled:
		return models.BidLost
	}

	if ranking.Leader == nil {
		return models.BidActive
	}
	if bid.ID == ranking.Leader.ID {
		return models.BidWinning
	}
	if ranking.Leader.Amount.GreaterThan(bid.Amount) {
		return models.BidOutbid
	}
	// Equal amount but lost the time tie-break: not outbid, not leading.
	return models.BidActive
}
