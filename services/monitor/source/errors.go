package source

type errUnsupportedEntryType string

func (e errUnsupportedEntryType) Error() string {
	return "entry type not supported by this source: " + string(e)
}

type errMalformedRecord string

func (e errMalformedRecord) Error() string {
	return "malformed trace record, missing or unknown kind: " + string(e)
}
