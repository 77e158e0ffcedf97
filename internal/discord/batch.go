package discord

import "unicode/utf8"

// Batch is the item list of one outgoing message.
type Batch []Item

// Partition fills batches of at most limit items in order. A non-nil header
// takes the first slot of the first batch. limit <= 0 means
// MaxEmbedsPerMessage. Nil items are skipped and no empty batch is returned.
func Partition(items []Item, header Item, limit int) []Batch {
	if limit <= 0 {
		limit = MaxEmbedsPerMessage
	}

	var batches []Batch
	current := make(Batch, 0, limit)
	if !isNil(header) {
		current = append(current, header)
	}
	for _, it := range items {
		if isNil(it) {
			continue
		}
		if len(current) == limit {
			batches = append(batches, current)
			current = make(Batch, 0, limit)
		}
		current = append(current, it)
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// Payload renders the batch into a webhook message. Descriptions are cut to
// a common length when the message would exceed MaxMessageRunes.
func (b Batch) Payload(username string) Payload {
	embeds := make([]Embed, 0, len(b))
	for _, it := range b {
		embeds = append(embeds, Render(it))
	}
	fitMessage(embeds)
	return Payload{Username: username, Embeds: embeds}
}

// fitMessage caps every description at the largest length that keeps the
// message within MaxMessageRunes. Short descriptions are left alone.
func fitMessage(embeds []Embed) {
	budget := MaxMessageRunes
	lengths := make([]int, len(embeds))
	total, longest := 0, 0
	for i, e := range embeds {
		budget -= utf8.RuneCountInString(e.Title)
		if e.Footer != nil {
			budget -= utf8.RuneCountInString(e.Footer.Text)
		}
		lengths[i] = utf8.RuneCountInString(e.Description)
		total += lengths[i]
		longest = max(longest, lengths[i])
	}
	if total <= budget {
		return
	}
	if budget < 0 {
		budget = 0
	}

	// Largest cap whose capped total still fits.
	lo, hi := 0, longest
	for lo < hi {
		mid := (lo + hi + 1) / 2
		sum := 0
		for _, n := range lengths {
			sum += min(n, mid)
		}
		if sum <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	for i := range embeds {
		embeds[i].Description = truncate(embeds[i].Description, lo)
	}
}

// isNil reports whether it is nil or holds a nil pointer.
func isNil(it Item) bool {
	switch v := it.(type) {
	case nil:
		return true
	case *Header:
		return v == nil
	case *Article:
		return v == nil
	default:
		return false
	}
}
