package orders

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

var validNext = map[Status]map[Status]bool{
	StatusPlaced:    {StatusShipped: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
}

// CanTransition guards the fulfillment lifecycle. The API only ever writes
// StatusPlaced; downstream systems advance from there.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
