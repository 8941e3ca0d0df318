package domain_test

import (
	"testing"

	"github.com/tradestreak/wall-street-service/domain"

	"github.com/stretchr/testify/assert"
)

func TestCramerPick_IsWinning(t *testing.T) {
	buy := domain.CramerPick{Recommendation: domain.RecommendationBuy, ReturnPercent: 4.2}
	assert.True(t, buy.IsWinning())

	buy.ReturnPercent = -1.5
	assert.False(t, buy.IsWinning())

	sell := domain.CramerPick{Recommendation: domain.RecommendationSell, ReturnPercent: -8.0}
	assert.True(t, sell.IsWinning(), "sell wins when the stock falls")

	sell.ReturnPercent = 3.0
	assert.False(t, sell.IsWinning())

	hold := domain.CramerPick{Recommendation: domain.RecommendationHold, ReturnPercent: -10.0}
	assert.True(t, hold.IsWinning(), "hold is neutral")
}
