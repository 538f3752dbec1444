package services

// pageCache renders PDF pages on first need and keeps them for the
// lifetime of one ingestion task. Only requested pages are rendered, and a
// page that failed once is not rendered again.
type pageCache struct {
	render func(index int) ([]byte, error)
	pages  map[int][]byte
	failed map[int]error
}

func newPageCache(render func(index int) ([]byte, error)) *pageCache {
	return &pageCache{
		render: render,
		pages:  make(map[int][]byte),
		failed: make(map[int]error),
	}
}

// get returns the image for the zero-based page index, rendering it if
// needed. The error is the render failure for that page.
func (c *pageCache) get(index int) ([]byte, error) {
	if img, ok := c.pages[index]; ok {
		return img, nil
	}
	if err, ok := c.failed[index]; ok {
		return nil, err
	}
	img, err := c.render(index)
	if err != nil {
		c.failed[index] = err
		return nil, err
	}
	c.pages[index] = img
	return img, nil
}
