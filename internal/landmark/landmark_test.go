package landmark
