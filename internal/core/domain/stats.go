package domain

// WarehouseStats is the dashboard summary. Derived entirely from the
// durable relations; cached read-side with a short TTL.
type WarehouseStats struct {
	TotalProducts  int `json:"total_products"`
	TotalSlots     int `json:"total_slots"`
	OccupiedSlots  int `json:"occupied_slots"`
	TotalMovements int `json:"total_movements"`
}

// OccupancyRate is the occupied fraction in [0,1]; 0 for an empty
// warehouse layout.
func (s WarehouseStats) OccupancyRate() float64 {
	if s.TotalSlots == 0 {
		return 0
	}
	return float64(s.OccupiedSlots) / float64(s.TotalSlots)
}
