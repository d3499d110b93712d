package enums

import "fmt"

// ItemType identifies the shape of a catalog item tracked by a wave.
type ItemType string

const (
	ItemTypeDisplay    ItemType = "display"
	ItemTypeKartonware ItemType = "kartonware"
	ItemTypePalette    ItemType = "palette"
	ItemTypeSchuette   ItemType = "schuette"
)

var validItemTypes = []ItemType{
	ItemTypeDisplay,
	ItemTypeKartonware,
	ItemTypePalette,
	ItemTypeSchuette,
}

// String implements fmt.Stringer.
func (i ItemType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemType.
func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsComposite reports whether the item type carries product-line children.
func (i ItemType) IsComposite() bool {
	return i == ItemTypePalette || i == ItemTypeSchuette
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
