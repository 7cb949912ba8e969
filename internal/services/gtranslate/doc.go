// Package gtranslate translates subtitle batches through Google's public
// translate_a/single endpoint (client=gtx). It needs no API key.
//
// One request carries a whole batch: lines are joined with newlines and the
// translated text is split back on newlines. A response with a different
// line count is an error, never a guess.
package gtranslate
