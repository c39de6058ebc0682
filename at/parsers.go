package at

import (
	"strconv"
	"strings"
)

// GapParser performs the standardized completion test over accumulated
// response text.
//
// When landmark is non-empty its last occurrence anchors the search; if
// landmarkReqd is set and the landmark is absent the response is still
// pending. From the anchor (or the start of the response when there is no
// landmark) the parser looks for terminator, or, when terminator is empty,
// for the standard final tokens in priority order: OK, the extended fault
// preamble (whose decimal code is returned verbatim and takes precedence
// over the generic tokens), ERROR, FAIL, NO CARRIER.
//
// A terminator found with at least gap characters between landmark end and
// terminator start yields ResultSuccess; a terminator found short of the
// gap yields ResultError; no terminator yields ResultPending.
func GapParser(response, landmark string, landmarkReqd bool, gap int, terminator string) Result {
	search := response

	if landmark != "" {
		at := strings.LastIndex(response, landmark)
		if at < 0 {
			if landmarkReqd {
				return ResultPending
			}
		} else {
			search = response[at+len(landmark):]
		}
	}

	termAt := -1
	if terminator != "" {
		termAt = strings.Index(search, terminator)
	} else {
		termAt = strings.Index(search, OK)
		if termAt < 0 {
			if code, ok := CMECode(search); ok {
				return code
			}
			if strings.Contains(search, Error) ||
				strings.Contains(search, Fail) ||
				strings.Contains(search, NoCarrier) {
				return ResultError
			}
		}
	}

	switch {
	case termAt >= 0 && termAt >= gap:
		return ResultSuccess
	case termAt >= 0:
		return ResultError
	default:
		return ResultPending
	}
}

// TokenCountParser tests a response for a minimum token count following the
// last occurrence of landmark, tokens being separated by delim. It returns
// ResultSuccess once at least minTokens-1 delimiters are present, a device
// fault code if the extended preamble appears, and ResultPending otherwise.
func TokenCountParser(response, landmark string, delim byte, minTokens int) Result {
	if at := strings.LastIndex(response, landmark); at >= 0 {
		rest := response[at+len(landmark):]
		found := 0
		for i := 0; i < len(rest) && found < minTokens-1; i++ {
			if rest[i] == delim {
				found++
			}
		}
		if found >= minTokens-1 {
			return ResultSuccess
		}
	}

	if code, ok := CMECode(response); ok {
		return code
	}
	return ResultPending
}

// OKParser is the default completion test for plain OK/ERROR style commands.
func OKParser(response string) Result {
	return GapParser(response, "", false, 0, "")
}

// DataPromptParser recognizes the "> " prompt the device issues when a
// command expects a follow-up data payload.
func DataPromptParser(response string) Result {
	if strings.Contains(response, Prompt) {
		return ResultSuccess
	}
	return ResultPending
}

// CMECode extracts the decimal fault code following the extended fault
// preamble. The reported flag is false when the preamble is absent or not
// followed by digits.
func CMECode(response string) (Result, bool) {
	at := strings.Index(response, CMEPreamble)
	if at < 0 {
		return ResultPending, false
	}

	rest := response[at+len(CMEPreamble):]
	rest = strings.TrimLeft(rest, " ")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return ResultPending, false
	}
	code, err := strconv.Atoi(rest[:end])
	if err != nil {
		return ResultPending, false
	}
	return Result(code), true
}
