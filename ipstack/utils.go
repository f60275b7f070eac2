package ipstack

import (
	"io"
	"io/ioutil"
)

func flushResponse(body io.ReadCloser) {
	io.Copy(ioutil.Discard, body) // nolint: errcheck
	body.Close()
}
