package services

const (
	LogActionUserAdmin    = "USER_ADMIN"
	LogActionAuctionAdmin = "AUCTION_ADMIN"
	LogActionLotImport    = "LOT_IMPORT"
	LogActionBidSubmit    = "BID_SUBMIT"
	LogActionAuctionSweep = "AUCTION_SWEEP"
	LogActionAuctionClose = "AUCTION_CLOSE"
	LogOutcomeSuccess     = "SUCCESS"
	LogOutcomeFail        = "FAIL"
)
