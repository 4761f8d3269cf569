package domain

import "sort"

// ValidateBinding decides whether lineUserID may be linked to the profile
// found by phone. byLine holds every profile currently carrying lineUserID.
// A nil result means the write may proceed; it also covers re-binding the
// same pair, which only refreshes the picture.
func ValidateBinding(byPhone *UserProfile, byLine []*UserProfile, lineUserID string) error {
	if byPhone == nil {
		return ErrPhoneNotRegistered
	}
	if current := byPhone.LineID(); current != "" && current != lineUserID {
		return ErrPhoneLinkedToOtherLine
	}
	for _, p := range byLine {
		if p != nil && p.UID != byPhone.UID {
			return ErrLineLinkedToOtherUser
		}
	}
	return nil
}

// Duplicates maps a phone number or LINE user ID to the UIDs sharing it.
type Duplicates struct {
	Phones  map[string][]string `json:"phones"`
	LineIDs map[string][]string `json:"lineIds"`
}

func (d Duplicates) Empty() bool {
	return len(d.Phones) == 0 && len(d.LineIDs) == 0
}

// FindDuplicates reports every non-empty phone number and LINE user ID held
// by more than one profile. Phones are compared after normalization; values
// that fail to normalize are compared verbatim.
func FindDuplicates(profiles []*UserProfile) Duplicates {
	phones := map[string][]string{}
	lines := map[string][]string{}
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if raw := p.Phone(); raw != "" {
			key, err := NormalizePhone(raw)
			if err != nil {
				key = raw
			}
			phones[key] = append(phones[key], p.UID)
		}
		if id := p.LineID(); id != "" {
			lines[id] = append(lines[id], p.UID)
		}
	}
	return Duplicates{Phones: keepShared(phones), LineIDs: keepShared(lines)}
}

func keepShared(in map[string][]string) map[string][]string {
	out := map[string][]string{}
	for k, uids := range in {
		if len(uids) > 1 {
			sort.Strings(uids)
			out[k] = uids
		}
	}
	return out
}
