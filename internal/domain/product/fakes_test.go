package product

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"

	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/crud/crudtest"
)

func newCategoryRepo() *crudtest.Memory[Category] {
	return crudtest.NewMemory(crudtest.Accessors[Category]{
		ID:   func(c *Category) *uint { return &c.ID },
		Slug: func(c *Category) string { return c.Slug },
		Match: func(c *Category, w crud.Where) bool {
			active, ok := w["is_active"]
			return !ok || active == c.IsActive
		},
	}, ErrCategoryNotFound)
}

func newBrandRepo() *crudtest.Memory[Brand] {
	return crudtest.NewMemory(crudtest.Accessors[Brand]{
		ID:   func(b *Brand) *uint { return &b.ID },
		Slug: func(b *Brand) string { return b.Slug },
	}, ErrBrandNotFound)
}

func newAttributeRepo() *crudtest.Memory[Attribute] {
	return crudtest.NewMemory(crudtest.Accessors[Attribute]{
		ID:   func(a *Attribute) *uint { return &a.ID },
		Slug: func(a *Attribute) string { return a.Slug },
	}, ErrAttributeNotFound)
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[uint]*Product
	nextID   uint
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: map[uint]*Product{}, nextID: 1}
}

func (r *fakeProducts) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProducts) Update(_ context.Context, p *Product, replaceImages bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.products[p.ID]
	if !ok {
		return ErrProductNotFound
	}
	cp := *p
	if !replaceImages {
		cp.Images = old.Images
	}
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProducts) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProducts) FindByID(_ context.Context, id uint) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProducts) FindBySlug(_ context.Context, slug string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *fakeProducts) FindByIDs(_ context.Context, ids []uint) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProducts) SlugTaken(_ context.Context, slug string, exceptID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.products {
		if id != exceptID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProducts) List(_ context.Context, f ListFilter) ([]Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Product
	for _, p := range r.products {
		if !f.IncludeInactive && !p.IsActive {
			continue
		}
		if f.CategoryID > 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.BrandID > 0 && (p.BrandID == nil || *p.BrandID != f.BrandID) {
			continue
		}
		if f.MinPrice > 0 && p.EffectivePrice() < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.EffectivePrice() > f.MaxPrice {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeProducts) CountByCategory(_ context.Context, categoryID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *fakeProducts) UpdateRating(_ context.Context, id uint, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.AverageRating = average
		p.ReviewCount = count
	}
	return nil
}

// fakeImages records saves and deletes without touching disk
type fakeImages struct {
	mu      sync.Mutex
	n       int
	deleted []string
	failAll bool
}

func (f *fakeImages) Save(_ context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return &upload.File{OriginalName: fh.Filename, URL: "/uploads/" + folder + "/" + fh.Filename}, nil
}

func (f *fakeImages) SaveAll(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]upload.File, error) {
	if f.failAll {
		return nil, upload.ErrNotAnImage
	}
	var out []upload.File
	for _, fh := range headers {
		file, _ := f.Save(ctx, folder, fh)
		out = append(out, *file)
	}
	return out, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeReviews struct {
	mu      sync.Mutex
	reviews map[uint]*Review
	nextID  uint
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[uint]*Review{}, nextID: 1}
}

func (r *fakeReviews) Create(_ context.Context, rv *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ID = r.nextID
	r.nextID++
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviews) Save(_ context.Context, rv *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviews) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviews) FindByID(_ context.Context, id uint) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviews) Exists(_ context.Context, userID, productID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviews) List(_ context.Context, f ReviewFilter) ([]Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Review
	for _, rv := range r.reviews {
		if f.ProductID > 0 && rv.ProductID != f.ProductID {
			continue
		}
		if f.Status != "" && rv.Status != f.Status {
			continue
		}
		out = append(out, *rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeReviews) Summary(_ context.Context, productID uint) (*ReviewSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[int]int{}
	for _, rv := range r.reviews {
		if rv.ProductID == productID && rv.Status == ReviewApproved {
			counts[rv.Rating]++
		}
	}
	return summarise(productID, counts), nil
}

type fakePurchases map[[2]uint]bool

func (f fakePurchases) HasDeliveredProduct(_ context.Context, userID, productID uint) (bool, error) {
	return f[[2]uint{userID, productID}], nil
}
