package models

type RoomType struct {
	Name     string  `yaml:"name" json:"name"`
	Price    float64 `yaml:"price" json:"price"`
	Capacity int     `yaml:"capacity" json:"capacity"`
	Size     string  `yaml:"size" json:"size,omitempty"`
	Beds     string  `yaml:"beds" json:"beds,omitempty"`
}

type Hotel struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Location  string     `yaml:"location" json:"location"`
	Address   string     `yaml:"address" json:"address,omitempty"`
	Photos    []string   `yaml:"photos" json:"photos"`
	RoomTypes []RoomType `yaml:"room_types" json:"room_types"`
}

// RoomTypeIndex returns the hotel's room types keyed by name.
func (h *Hotel) RoomTypeIndex() map[string]RoomType {
	idx := make(map[string]RoomType, len(h.RoomTypes))
	for _, rt := range h.RoomTypes {
		idx[rt.Name] = rt
	}
	return idx
}

// FirstPhoto returns the cover image or "".
func (h *Hotel) FirstPhoto() string {
	if len(h.Photos) == 0 {
		return ""
	}
	return h.Photos[0]
}

// HotelAvailability is the advisory availability view of one hotel for a stay.
type HotelAvailability struct {
	HotelID            string   `json:"hotel_id"`
	AvailableRoomTypes []string `json:"available_room_types"`
	BookedRoomTypes    []string `json:"booked_room_types"`
	HasAvailableRooms  bool     `json:"has_available_rooms"`
	LikelySoldOut      bool     `json:"likely_sold_out"`
}
