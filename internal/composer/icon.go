package composer

// Icon identifies the favorite icon shown in the header
type Icon string

const (
	IconFilled  Icon = "favorite"
	IconOutline Icon = "favorite-border"
)

// FavoriteIcon maps the favorite flag to its icon
func FavoriteIcon(isFavorite bool) Icon {
	if isFavorite {
		return IconFilled
	}
	return IconOutline
}
