package util

// FormatAddress shortens a public-key hex string for display: the first and
// last chars characters joined by an ellipsis. Addresses no longer than
// 2*chars are returned unchanged.
func FormatAddress(address string, chars int) string {
	if chars <= 0 {
		chars = 6
	}
	if len(address) <= chars*2 {
		return address
	}
	return address[:chars] + "..." + address[len(address)-chars:]
}
