package textproc

// Porter stemming algorithm (M.F. Porter, 1980).  Operates on lowercase
// ASCII words; words shorter than three letters are returned unchanged, as
// in the reference implementation.

type stemmer struct {
	b []byte // word buffer
	k int    // index of the last character in the current word
	j int    // general offset set by ends()
}

// Stem returns the Porter stem of word.  The input is expected to be a
// lowercase token; non-ASCII input is returned unchanged.
func Stem(word string) string {
	if len(word) <= 2 {
		return word
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return word
		}
	}

	s := &stemmer{b: []byte(word), k: len(word) - 1}
	s.step1ab()
	s.step1c()
	s.step2()
	s.step3()
	s.step4()
	s.step5()
	return string(s.b[:s.k+1])
}

// cons reports whether b[i] is a consonant.  'y' is a consonant when it is
// the first letter or follows a vowel.
func (s *stemmer) cons(i int) bool {
	switch s.b[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !s.cons(i - 1)
	default:
		return true
	}
}

// m measures the number of consonant-vowel sequences between 0 and j.
func (s *stemmer) m() int {
	n := 0
	i := 0
	for {
		if i > s.j {
			return n
		}
		if !s.cons(i) {
			break
		}
		i++
	}
	i++
	for {
		for {
			if i > s.j {
				return n
			}
			if s.cons(i) {
				break
			}
			i++
		}
		i++
		n++
		for {
			if i > s.j {
				return n
			}
			if !s.cons(i) {
				break
			}
			i++
		}
		i++
	}
}

// vowelInStem reports whether b[0..j] contains a vowel.
func (s *stemmer) vowelInStem() bool {
	for i := 0; i <= s.j; i++ {
		if !s.cons(i) {
			return true
		}
	}
	return false
}

// doubleC reports whether b[i-1..i] is a double consonant.
func (s *stemmer) doubleC(i int) bool {
	if i < 1 {
		return false
	}
	if s.b[i] != s.b[i-1] {
		return false
	}
	return s.cons(i)
}

// cvc reports whether b[i-2..i] is consonant-vowel-consonant where the final
// consonant is not w, x, or y.  Used to restore a trailing e (cav(e), lov(e))
// and to detect short stems (hop(-ing)).
func (s *stemmer) cvc(i int) bool {
	if i < 2 || !s.cons(i) || s.cons(i-1) || !s.cons(i-2) {
		return false
	}
	switch s.b[i] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

// ends reports whether b[0..k] ends with suffix and sets j accordingly.
func (s *stemmer) ends(suffix string) bool {
	l := len(suffix)
	if l > s.k+1 {
		return false
	}
	if string(s.b[s.k+1-l:s.k+1]) != suffix {
		return false
	}
	s.j = s.k - l
	return true
}

// setTo replaces b[j+1..k] with repl and adjusts k.
func (s *stemmer) setTo(repl string) {
	s.b = append(s.b[:s.j+1], repl...)
	s.k = s.j + len(repl)
}

// replace applies setTo when the measure of the stem is positive.
func (s *stemmer) replace(repl string) {
	if s.m() > 0 {
		s.setTo(repl)
	}
}

// step1ab removes plurals and -ed / -ing suffixes.
func (s *stemmer) step1ab() {
	if s.b[s.k] == 's' {
		switch {
		case s.ends("sses"):
			s.k -= 2
		case s.ends("ies"):
			s.setTo("i")
		case s.b[s.k-1] != 's':
			s.k--
		}
	}
	if s.ends("eed") {
		if s.m() > 0 {
			s.k--
		}
	} else if (s.ends("ed") || s.ends("ing")) && s.vowelInStem() {
		s.k = s.j
		switch {
		case s.ends("at"):
			s.setTo("ate")
		case s.ends("bl"):
			s.setTo("ble")
		case s.ends("iz"):
			s.setTo("ize")
		case s.doubleC(s.k):
			s.k--
			switch s.b[s.k] {
			case 'l', 's', 'z':
				s.k++
			}
		default:
			if s.m() == 1 && s.cvc(s.k) {
				s.setTo2("e")
			}
		}
	}
}

// setTo2 appends repl at position k+1 without consulting j.
func (s *stemmer) setTo2(repl string) {
	s.j = s.k
	s.setTo(repl)
}

// step1c turns terminal y to i when there is another vowel in the stem.
func (s *stemmer) step1c() {
	if s.ends("y") && s.vowelInStem() {
		s.b[s.k] = 'i'
	}
}

// step2 maps double suffixes to single ones, e.g. -ization → -ize.
func (s *stemmer) step2() {
	if s.k < 1 {
		return
	}
	switch s.b[s.k-1] {
	case 'a':
		if s.ends("ational") {
			s.replace("ate")
		} else if s.ends("tional") {
			s.replace("tion")
		}
	case 'c':
		if s.ends("enci") {
			s.replace("ence")
		} else if s.ends("anci") {
			s.replace("ance")
		}
	case 'e':
		if s.ends("izer") {
			s.replace("ize")
		}
	case 'l':
		if s.ends("bli") {
			s.replace("ble")
		} else if s.ends("alli") {
			s.replace("al")
		} else if s.ends("entli") {
			s.replace("ent")
		} else if s.ends("eli") {
			s.replace("e")
		} else if s.ends("ousli") {
			s.replace("ous")
		}
	case 'o':
		if s.ends("ization") {
			s.replace("ize")
		} else if s.ends("ation") {
			s.replace("ate")
		} else if s.ends("ator") {
			s.replace("ate")
		}
	case 's':
		if s.ends("alism") {
			s.replace("al")
		} else if s.ends("iveness") {
			s.replace("ive")
		} else if s.ends("fulness") {
			s.replace("ful")
		} else if s.ends("ousness") {
			s.replace("ous")
		}
	case 't':
		if s.ends("aliti") {
			s.replace("al")
		} else if s.ends("iviti") {
			s.replace("ive")
		} else if s.ends("biliti") {
			s.replace("ble")
		}
	case 'g':
		if s.ends("logi") {
			s.replace("log")
		}
	}
}

// step3 handles -ic-, -full, -ness and similar.
func (s *stemmer) step3() {
	if s.k < 0 {
		return
	}
	switch s.b[s.k] {
	case 'e':
		if s.ends("icate") {
			s.replace("ic")
		} else if s.ends("ative") {
			s.replace("")
		} else if s.ends("alize") {
			s.replace("al")
		}
	case 'i':
		if s.ends("iciti") {
			s.replace("ic")
		}
	case 'l':
		if s.ends("ical") {
			s.replace("ic")
		} else if s.ends("ful") {
			s.replace("")
		}
	case 's':
		if s.ends("ness") {
			s.replace("")
		}
	}
}

// step4 removes -ant, -ence and similar suffixes in context <c>vcvc<v>.
func (s *stemmer) step4() {
	if s.k < 1 {
		return
	}
	switch s.b[s.k-1] {
	case 'a':
		if !s.ends("al") {
			return
		}
	case 'c':
		if !s.ends("ance") && !s.ends("ence") {
			return
		}
	case 'e':
		if !s.ends("er") {
			return
		}
	case 'i':
		if !s.ends("ic") {
			return
		}
	case 'l':
		if !s.ends("able") && !s.ends("ible") {
			return
		}
	case 'n':
		if !s.ends("ant") && !s.ends("ement") && !s.ends("ment") && !s.ends("ent") {
			return
		}
	case 'o':
		if s.ends("ion") {
			if s.j < 0 || (s.b[s.j] != 's' && s.b[s.j] != 't') {
				return
			}
		} else if !s.ends("ou") {
			return
		}
	case 's':
		if !s.ends("ism") {
			return
		}
	case 't':
		if !s.ends("ate") && !s.ends("iti") {
			return
		}
	case 'u':
		if !s.ends("ous") {
			return
		}
	case 'v':
		if !s.ends("ive") {
			return
		}
	case 'z':
		if !s.ends("ize") {
			return
		}
	default:
		return
	}
	if s.m() > 1 {
		s.k = s.j
	}
}

// step5 removes a final -e and reduces -ll to -l in long words.
func (s *stemmer) step5() {
	if s.k < 0 {
		return
	}
	s.j = s.k
	if s.b[s.k] == 'e' {
		a := s.m()
		if a > 1 || (a == 1 && !s.cvc(s.k-1)) {
			s.k--
		}
	}
	if s.b[s.k] == 'l' && s.doubleC(s.k) && s.m() > 1 {
		s.k--
	}
}

// stemAll returns the stems of all tokens, preserving order.
func stemAll(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Stem(t)
	}
	return out
}
