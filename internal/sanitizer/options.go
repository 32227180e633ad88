package sanitizer

// Options selects what a sanitization run redacts.
type Options struct {
	// Words are field names added to the default word list.
	Words []string `json:"words,omitempty"`

	// ContentTypes are content types added to the default content list.
	ContentTypes []string `json:"content_types,omitempty"`

	// AllCookies redacts every cookie, whatever its name.
	AllCookies bool `json:"all_cookies,omitempty"`

	// AllHeaders redacts every header, whatever its name.
	AllHeaders bool `json:"all_headers,omitempty"`

	// AllParams redacts every query string and form parameter.
	AllParams bool `json:"all_params,omitempty"`

	// AllMimeTypes replaces the body text of every response, whatever its
	// content type. The content list is ignored when set.
	AllMimeTypes bool `json:"all_mime_types,omitempty"`
}

// WordList returns the default word list merged with o.Words.
func (o Options) WordList() []string {
	return MergeLists(DefaultWordList(), o.Words)
}

// ContentList returns the default content list merged with o.ContentTypes.
func (o Options) ContentList() []string {
	return MergeLists(DefaultContentList(), o.ContentTypes)
}

// ExpandWordList appends to words the extracted names of every category
// selected by the All* switches.
func (o Options) ExpandWordList(words []string, elems *ExtractedElements) []string {
	extra := make([][]string, 0, 4)
	if o.AllCookies {
		extra = append(extra, elems.Names(CategoryCookies))
	}
	if o.AllHeaders {
		extra = append(extra, elems.Names(CategoryHeaders))
	}
	if o.AllParams {
		extra = append(extra, elems.Names(CategoryQueryString), elems.Names(CategoryParams))
	}
	return MergeLists(append([][]string{words}, extra...)...)
}
