package ticket

import "sort"

// Top returns the ticket with the smallest priority. Among equal priorities
// the earliest in the source's order wins.
func Top(tickets []Ticket) (Ticket, bool) {
	if len(tickets) == 0 {
		return Ticket{}, false
	}
	best := 0
	for i := 1; i < len(tickets); i++ {
		if tickets[i].Priority < tickets[best].Priority {
			best = i
		}
	}
	return tickets[best], true
}

// SortByPriority returns a copy ordered most urgent first, stable among ties.
func SortByPriority(tickets []Ticket) []Ticket {
	sorted := make([]Ticket, len(tickets))
	copy(sorted, tickets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
