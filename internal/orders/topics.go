package orders

const TopicOrderPlaced = "order.placed"

// Partition key = order_id so all events of one order keep their ordering.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
