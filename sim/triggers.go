package sim

// Exit-rule evaluation against the bar's close price. Stop loss is checked
// first; at most one trigger fires per bar. A threshold of 0 means none.

func hitStopLoss(p Position, price float64) bool {
	if p.StopLoss == 0 {
		return false
	}
	if p.Direction > 0 {
		return price <= p.StopLoss
	}
	return price >= p.StopLoss
}

func hitTakeProfit(p Position, price float64) bool {
	if p.TakeProfit == 0 {
		return false
	}
	if p.Direction > 0 {
		return price >= p.TakeProfit
	}
	return price <= p.TakeProfit
}

// checkExit returns the close reason for an open position at the current
// price, or ok=false when neither threshold is breached.
func checkExit(p Position, price float64) (CloseReason, bool) {
	switch {
	case hitStopLoss(p, price):
		return ReasonStopLoss, true
	case hitTakeProfit(p, price):
		return ReasonTakeProfit, true
	}
	return "", false
}
