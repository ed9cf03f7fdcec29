package uddf

import "fmt"

// Cross-reference ids depend only on record ids, so the same log always
// produces the same references.

// OwnerID is the id of the log owner's diver element.
const OwnerID = "owner"

// DiveRef returns the id of a dive element.
func DiveRef(id int64) string { return fmt.Sprintf("dive_%d", id) }

// SiteRef returns the id of a site element.
func SiteRef(id int64) string { return fmt.Sprintf("site_%d", id) }

// BuddyRef returns the id of a buddy element.
func BuddyRef(id int64) string { return fmt.Sprintf("buddy_%d", id) }

// EquipmentRef returns the id of an equipment piece.
func EquipmentRef(id int64) string { return fmt.Sprintf("eq_%d", id) }

// TankRef returns the id of a tank.
func TankRef(id int64) string { return fmt.Sprintf("tank_%d", id) }

// TripRef returns the id of a trip.
func TripRef(id int) string { return fmt.Sprintf("trip_%d", id) }

// RepetitionGroupRef returns the id of a repetition group.
func RepetitionGroupRef(id int) string { return fmt.Sprintf("rg_%d", id) }
