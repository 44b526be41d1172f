package entity

// OrderStatus is a step of the delivery lifecycle.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAccepted   OrderStatus = "accepted"
	StatusInProgress OrderStatus = "in_progress"
	StatusDelivered  OrderStatus = "delivered"
)

// lifecycle lists the statuses in the only order an order may move through.
var lifecycle = []OrderStatus{StatusPending, StatusAccepted, StatusInProgress, StatusDelivered}

// StatusLabels is the display text shared by the consumer, store and courier apps.
var StatusLabels = map[OrderStatus]string{
	StatusPending:    "Pendiente",
	StatusAccepted:   "Aceptado",
	StatusInProgress: "En camino",
	StatusDelivered:  "Entregado",
}

// Lifecycle returns the statuses in lifecycle order.
func Lifecycle() []OrderStatus {
	return append([]OrderStatus(nil), lifecycle...)
}

func (s OrderStatus) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s.rank() >= 0
}

// Label returns the display text for s, or s itself when it has none.
func (s OrderStatus) Label() string {
	if l, ok := StatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Next returns the status that follows s. ok is false for delivered and unknown statuses.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	r := s.rank()
	if r < 0 || r == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[r+1], true
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered
}

// CanTransition reports whether an order in status from may move to status to.
// Only a single step forward is allowed.
func CanTransition(from, to OrderStatus) bool {
	next, ok := from.Next()
	return ok && next == to
}
