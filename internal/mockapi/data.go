package mockapi

import (
	"fmt"

	"github.com/vango-dev/userboard/pkg/posts"
	"github.com/vango-dev/userboard/pkg/users"
)

// seedUsers returns the ten users the server starts with.
func seedUsers() []users.User {
	en, nl := "en", "nl"
	return []users.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz", Language: &en},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv"},
		{ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net", Language: &nl},
		{ID: 4, Name: "Patricia Lebsack", Username: "Karianne", Email: "Julianne.OConner@kory.org"},
		{ID: 5, Name: "Chelsey Dietrich", Username: "Kamren", Email: "Lucio_Hettinger@annie.ca"},
		{ID: 6, Name: "Mrs. Dennis Schulist", Username: "Leopoldo_Corkery", Email: "Karley_Dach@jasper.info"},
		{ID: 7, Name: "Kurtis Weissnat", Username: "Elwyn.Skiles", Email: "Telly.Hoeger@billy.biz"},
		{ID: 8, Name: "Nicholas Runolfsdottir V", Username: "Maxime_Nienow", Email: "Sherwood@rosamond.me"},
		{ID: 9, Name: "Glenna Reichert", Username: "Delphine", Email: "Chaim_McDermott@dana.io"},
		{ID: 10, Name: "Clementina DuBuque", Username: "Moriah.Stanton", Email: "Rey.Padberg@karina.biz"},
	}
}

// seedPosts returns two posts per seeded user.
func seedPosts() []posts.Post {
	out := make([]posts.Post, 0, 20)
	for user := 1; user <= 10; user++ {
		for n := 1; n <= 2; n++ {
			id := len(out) + 1
			out = append(out, posts.Post{
				ID:     id,
				Title:  fmt.Sprintf("Post %d by user %d", n, user),
				Body:   fmt.Sprintf("Body of post %d.", id),
				UserID: user,
			})
		}
	}
	return out
}
